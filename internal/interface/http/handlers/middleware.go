package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyAuth guards the mutating endpoints. Configured keys may be plain
// strings or bcrypt hashes (recognized by the "$2" prefix), so production
// configs never have to store keys in the clear.
type APIKeyAuth struct {
	headerName string
	validKeys  []string
}

// NewAPIKeyAuth creates an authenticator for the given header and keys.
// Empty entries are dropped.
func NewAPIKeyAuth(headerName string, keys []string) *APIKeyAuth {
	validKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != "" {
			validKeys = append(validKeys, key)
		}
	}
	return &APIKeyAuth{
		headerName: headerName,
		validKeys:  validKeys,
	}
}

// IsValid reports whether key matches any configured key. Plain keys
// compare in constant time; hashed keys go through bcrypt.
func (a *APIKeyAuth) IsValid(key string) bool {
	for _, valid := range a.validKeys {
		if strings.HasPrefix(valid, "$2") {
			if bcrypt.CompareHashAndPassword([]byte(valid), []byte(key)) == nil {
				return true
			}
			continue
		}
		if subtle.ConstantTimeCompare([]byte(valid), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// Middleware rejects requests that carry no valid key in either the
// configured header or an Authorization: Bearer header.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(a.headerName)
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if key == "" {
			writeAuthError(w, "missing_api_key", "API key is required")
			return
		}
		if !a.IsValid(key) {
			writeAuthError(w, "invalid_api_key", "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + code + `","message":"` + message + `"}`))
}
