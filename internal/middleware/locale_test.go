package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/i18n"
)

func TestLocale(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		accept string
		want   i18n.Locale
	}{
		{"cookie wins", "en", "sk-SK,sk;q=0.9", i18n.EN},
		{"accept language", "", "en-GB,en;q=0.8", i18n.EN},
		{"invalid cookie falls through", "de", "sk", i18n.SK},
		{"nothing set", "", "", i18n.SK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got i18n.Locale
			handler := Locale(i18n.SK)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = LocaleFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: i18n.CookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if got != tt.want {
				t.Errorf("locale: got %q, want %q", got, tt.want)
			}
			if cl := rr.Header().Get("Content-Language"); cl != string(tt.want) {
				t.Errorf("Content-Language: got %q, want %q", cl, tt.want)
			}
		})
	}
}

func TestLocaleFromCtxDefault(t *testing.T) {
	if got := LocaleFromCtx(context.Background()); got != i18n.SK {
		t.Errorf("got %q, want sk", got)
	}
	ctx := WithLocale(context.Background(), i18n.EN)
	if got := LocaleFromCtx(ctx); got != i18n.EN {
		t.Errorf("got %q, want en", got)
	}
}
