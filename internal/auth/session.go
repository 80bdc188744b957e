// Package auth resolves the caller's identity. The identity provider itself
// is external: sessions arrive either as a bearer token previously issued by
// Sessions, or as identity headers set by a trusted fronting proxy.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tempo/internal/cache"
)

// Identity is the stable identity every stored record is namespaced by.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

var ErrNoSession = errors.New("no valid session")

const maxSessions = 1000

// Sessions maps bearer tokens to identities with a TTL. Static tokens from
// configuration never expire; issued tokens do.
type Sessions struct {
	issued *cache.LRUCache[Identity]

	mu     sync.RWMutex
	static map[string]Identity

	trustProxy   bool
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewSessions(ttl time.Duration, trustProxy bool) *Sessions {
	s := &Sessions{
		issued:      cache.NewLRUCache[Identity](maxSessions, ttl),
		static:      make(map[string]Identity),
		trustProxy:  trustProxy,
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

// Bind registers a static token for the given identity.
func (s *Sessions) Bind(token string, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.static[token] = id
}

// Issue creates a fresh session token for the identity.
func (s *Sessions) Issue(id Identity) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	token := "sess_" + hex.EncodeToString(buf)
	s.issued.Set(token, id)
	return token, nil
}

// Revoke drops an issued session. Static bindings are not revocable here.
func (s *Sessions) Revoke(token string) {
	s.issued.Delete(token)
}

// Resolve extracts the caller's identity from the request, or ErrNoSession.
func (s *Sessions) Resolve(r *http.Request) (Identity, error) {
	if token := bearerToken(r); token != "" {
		s.mu.RLock()
		id, ok := s.static[token]
		s.mu.RUnlock()
		if ok {
			return id, nil
		}
		if id, ok := s.issued.Get(token); ok {
			return id, nil
		}
		return Identity{}, ErrNoSession
	}

	if s.trustProxy {
		if user := strings.TrimSpace(r.Header.Get("X-Forwarded-User")); user != "" {
			return Identity{
				ID:    user,
				Name:  strings.TrimSpace(r.Header.Get("X-Forwarded-Preferred-Username")),
				Email: strings.TrimSpace(r.Header.Get("X-Forwarded-Email")),
			}, nil
		}
	}

	return Identity{}, ErrNoSession
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (s *Sessions) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.issued.CleanExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// Stop terminates the cleanup goroutine.
func (s *Sessions) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}
