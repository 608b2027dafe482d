// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"storefront/internal/models"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "sf_session"

	// IdleTTL is how long a signed-in session survives without requests.
	// Every request through Get pushes the expiry out again.
	IdleTTL = 8 * time.Hour

	// PendingTTL bounds a session that has passed the password step but not
	// the TOTP step.
	PendingTTL = 10 * time.Minute

	keyPrefix = "session:"

	// 32 bytes = 64 hex chars
	idLength = 32
)

// Data holds the session payload stored in Valkey.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	TwoFADone   bool      `json:"two_fa_done"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether the session belongs to an admin.
func (d *Data) IsAdmin() bool {
	return models.Role(d.Role) == models.RoleAdmin
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client     *redis.Client
	idleTTL    time.Duration
	pendingTTL time.Duration
	secure     bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie Secure; enable it when served over TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client:     client,
		idleTTL:    IdleTTL,
		pendingTTL: PendingTTL,
		secure:     secure,
	}
}

// Create stores a new session under a fresh random ID and sets the
// session cookie on the response. Returns the session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	id, err := s.put(ctx, data)
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	s.setCookie(w, id)
	return id, nil
}

// Get loads the session named by the request cookie. It returns nil, nil
// when there is no cookie or the session has expired. Signed-in sessions
// have their idle expiry refreshed.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	key := keyPrefix + cookie.Value

	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}

	if data.TwoFADone {
		if err := s.client.Expire(ctx, key, s.idleTTL).Err(); err != nil {
			slog.Warn("session touch failed", "error", err)
		}
	}
	return &data, nil
}

// Rotate moves the session to a new ID with the given data and drops the
// old one. Call it when the session gains privileges, such as after the
// second factor, so an ID seen before sign-in is worthless afterwards.
func (s *Store) Rotate(ctx context.Context, w http.ResponseWriter, r *http.Request, data *Data) error {
	id, err := s.put(ctx, data)
	if err != nil {
		return fmt.Errorf("session rotate: %w", err)
	}
	s.setCookie(w, id)

	if old, err := r.Cookie(CookieName); err == nil && old.Value != "" {
		if err := s.client.Del(ctx, keyPrefix+old.Value).Err(); err != nil {
			slog.Warn("old session not removed", "error", err)
		}
	}
	return nil
}

// Destroy removes the session from Valkey and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	// Expire the cookie even if Valkey is unreachable.
	s.setCookie(w, "")

	if err := s.client.Del(ctx, keyPrefix+cookie.Value).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttlFor(data)).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ttlFor(data *Data) time.Duration {
	if data.TwoFADone {
		return s.idleTTL
	}
	return s.pendingTTL
}

// setCookie writes the session cookie. It lives until the browser closes;
// Valkey owns the real expiry. An empty id deletes the cookie.
func (s *Store) setCookie(w http.ResponseWriter, id string) {
	maxAge := 0
	if id == "" {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
