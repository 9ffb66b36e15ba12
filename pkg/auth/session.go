package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName carries the signed session ID.
const DefaultCookieName = "_neris_auth_sid"

// NewSessionID returns 32 random bytes encoded as unpadded base64url.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("could not generate session id: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies the session cookie.
type Sessions struct {
	secret []byte
	name   string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions builds a cookie codec. An empty name means DefaultCookieName.
func NewSessions(secret, name string, ttl time.Duration) *Sessions {
	if name == "" {
		name = DefaultCookieName
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Sessions{secret: []byte(secret), name: name, ttl: ttl, now: time.Now}
}

// Encode signs sid into a cookie value.
func (s *Sessions) Encode(sid string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign session: %w", err)
	}

	return signed, nil
}

// Decode verifies a cookie value and returns its session ID.
func (s *Sessions) Decode(value string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("invalid session: %w", err)
	}
	if claims.SID == "" {
		return "", errors.New("session has no id")
	}

	return claims.SID, nil
}

// FromRequest returns the session ID of r, or "" when the cookie is missing
// or invalid.
func (s *Sessions) FromRequest(r *http.Request) string {
	c, err := r.Cookie(s.name)
	if err != nil {
		return ""
	}
	sid, err := s.Decode(c.Value)
	if err != nil {
		return ""
	}

	return sid
}

// SetCookie writes the session cookie for sid.
func (s *Sessions) SetCookie(w http.ResponseWriter, sid string) error {
	value, err := s.Encode(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	return nil
}
