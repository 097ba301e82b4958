package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/mireven/shopfront/internal/domain/auth"
)

// Security authenticates admin requests via HMAC-SHA256 hashed API keys
// carried in the X-API-Key header.
type Security struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurity creates a Security with the given API key repository and HMAC
// pepper.
func NewSecurity(apikeys auth.Repository, pepper []byte) *Security {
	return &Security{apikeys: apikeys, pepper: pepper}
}

// RequireAPIKey rejects requests without a valid API key.
func (s *Security) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" || !s.validate(r, key) {
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validate computes the HMAC-SHA256 of the presented key, looks it up, and
// compares in constant time. The comparison guards against a repository
// returning a stale or wrong row.
func (s *Security) validate(r *http.Request, key string) bool {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := s.apikeys.FindByHash(r.Context(), hex.EncodeToString(hash))
	if err != nil {
		return false
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(hash, stored) == 1
}
