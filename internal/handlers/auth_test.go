// auth_test.go exercises the login and TOTP flow against real PostgreSQL
// and Valkey; those tests are skipped when the services are unavailable.
package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"storefront/internal/models"
	"storefront/internal/session"
)

func TestEnrolmentURL(t *testing.T) {
	key, err := otp.NewKeyFromURL(enrolmentURL("jana@example.sk", "JBSWY3DPEHPK3PXP"))
	if err != nil {
		t.Fatalf("parse enrolment URL: %v", err)
	}
	if key.Issuer() != totpIssuer {
		t.Errorf("issuer: got %q, want %q", key.Issuer(), totpIssuer)
	}
	if key.AccountName() != "jana@example.sk" {
		t.Errorf("account: got %q", key.AccountName())
	}
	if key.Secret() != "JBSWY3DPEHPK3PXP" {
		t.Errorf("secret: got %q", key.Secret())
	}
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.Auth.LoginPage(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	// A fully signed-in user goes straight to the dashboard.
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	req = req.WithContext(ctxWithSession(req.Context(), testSession(uuid.New(), "a@example.com", "admin", true)))
	rec = httptest.NewRecorder()
	env.Auth.LoginPage(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin" {
		t.Errorf("got %d %q, want 303 /admin", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginSubmit(t *testing.T) {
	env := newTestEnv(t)
	user := env.testUser(t, "correct horse", models.RoleAdmin)

	rec := httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, postForm("/admin/login", url.Values{"email": {user.Email}, "password": {"wrong"}}))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no session cookie on failed login")
	}

	rec = httptest.NewRecorder()
	env.Auth.LoginSubmit(rec, postForm("/admin/login", url.Values{"email": {user.Email}, "password": {"correct horse"}}))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/2fa" {
		t.Fatalf("got %d %q, want 303 /admin/2fa", rec.Code, rec.Header().Get("Location"))
	}

	var sessCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			sessCookie = c
		}
	}
	if sessCookie == nil {
		t.Fatal("session cookie not set")
	}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(sessCookie)
	data, err := env.Sessions.Get(context.Background(), req)
	if err != nil || data == nil {
		t.Fatalf("session lookup: %v %v", data, err)
	}
	if data.TwoFADone {
		t.Error("second factor must still be pending after the password step")
	}
}

func TestTwoFAEnrolment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.testUser(t, "pw-12345", models.RoleAuthor)

	// Start a real session so Rotate has an old ID to retire.
	sess := testSession(user.ID, user.Email, string(user.Role), false)
	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(ctx, rec, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := rec.Result().Cookies()[0]

	// Setup page stores a secret and shows the QR code.
	req := httptest.NewRequest(http.MethodGet, "/admin/2fa", nil)
	req = req.WithContext(ctxWithSession(req.Context(), sess))
	rec = httptest.NewRecorder()
	env.Auth.TwoFAPage(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("setup page: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Error("setup page should embed the QR code")
	}

	stored, err := env.Users.FindByID(ctx, user.ID)
	if err != nil || stored.TOTPSecret == nil {
		t.Fatalf("secret not stored: %v", err)
	}

	submit := func(code string) *httptest.ResponseRecorder {
		req := postForm("/admin/2fa", url.Values{"code": {code}})
		req.AddCookie(cookie)
		req = req.WithContext(ctxWithSession(req.Context(), sess))
		rec := httptest.NewRecorder()
		env.Auth.TwoFASubmit(rec, req)
		return rec
	}

	if rec := submit("000000x"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad code: got %d, want 401", rec.Code)
	}

	code, err := totp.GenerateCode(*stored.TOTPSecret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	rec = submit(code)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/posts" {
		t.Fatalf("valid code: got %d %q, want 303 /admin/posts", rec.Code, rec.Header().Get("Location"))
	}

	stored, _ = env.Users.FindByID(ctx, user.ID)
	if !stored.TOTPEnabled {
		t.Error("TOTP should be enabled after the first valid code")
	}

	var rotated *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			rotated = c
		}
	}
	if rotated == nil || rotated.Value == cookie.Value {
		t.Fatal("completing 2FA should issue a new session ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	if data, _ := env.Sessions.Get(ctx, req); data != nil {
		t.Error("the pre-2FA session ID must no longer resolve")
	}

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(rotated)
	data, _ := env.Sessions.Get(ctx, req)
	if data == nil || !data.TwoFADone {
		t.Error("rotated session should record the completed second factor")
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(context.Background(), rec, testSession(uuid.New(), "x@example.com", "admin", true)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	rec = httptest.NewRecorder()
	env.Auth.Logout(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/login" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	data, _ := env.Sessions.Get(context.Background(), req)
	if data != nil {
		t.Error("session should be gone after logout")
	}
}
