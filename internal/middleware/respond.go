package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// writeError answers with {"error": msg}, the shape every /api handler uses.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func isAPI(r *http.Request) bool {
	return isAPIPath(r.URL.Path)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// fail writes a JSON error for API paths and plain text elsewhere.
func fail(w http.ResponseWriter, r *http.Request, status int) {
	if isAPI(r) {
		writeError(w, status, http.StatusText(status))
		return
	}
	http.Error(w, http.StatusText(status), status)
}
