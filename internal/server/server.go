package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// csrfHeader is the anti-forgery header every mutating request must
// carry, holding a token issued by GET /api/token.
const csrfHeader = "X-CSRF-Token"

// Config holds the demo server settings.
type Config struct {
	// WriteToken, when set, must arrive as a bearer token on every
	// mutating request; requests without it are treated as the guest
	// role and rejected with 403.
	WriteToken string
}

// tokenStore issues and verifies anti-forgery tokens. Tokens never
// expire in the demo server; a restart invalidates all of them.
type tokenStore struct {
	mu     sync.Mutex
	issued map[string]struct{}
}

func newTokenStore() *tokenStore {
	return &tokenStore{issued: make(map[string]struct{})}
}

func (t *tokenStore) issue() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	t.mu.Lock()
	t.issued[token] = struct{}{}
	t.mu.Unlock()
	return token, nil
}

func (t *tokenStore) valid(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.issued[token]
	return ok
}

// NewRouter builds the demo server router: request logging and panic
// recovery, CORS for browser-based clients, the anti-forgery handshake,
// and the write-role gate on mutating methods.
func NewRouter(h *Handler, cfg Config) *chi.Mux {
	tokens := newTokenStore()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", csrfHeader},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/token", func(w http.ResponseWriter, req *http.Request) {
			token, err := tokens.issue()
			if err != nil {
				writeServerError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"token": token})
		})

		r.Get("/subjects", h.ListSubjects)
		r.Get("/projects", h.ListProjects)
		r.Get("/allocations", h.ListAllocations)
		r.Get("/annual-leave", h.ListLeave)
		r.Get("/markers", h.ListMarkers)

		// Mutations sit behind the anti-forgery and role gates.
		r.Group(func(r chi.Router) {
			r.Use(requireCSRF(tokens))
			r.Use(requireWriteRole(cfg.WriteToken))

			r.Post("/allocations", h.CreateAllocation)
			r.Put("/allocations/{id}", h.UpdateAllocation)
			r.Delete("/allocations/{id}", h.DeleteAllocation)

			r.Post("/annual-leave", h.CreateLeave)
			r.Put("/annual-leave/{id}", h.UpdateLeave)
			r.Delete("/annual-leave/{id}", h.DeleteLeave)

			r.Post("/markers", h.CreateMarker)
			r.Put("/markers/{id}", h.UpdateMarker)
			r.Delete("/markers/{id}", h.DeleteMarker)
		})
	})

	return r
}

// requireCSRF rejects mutating requests whose anti-forgery token was
// not issued by this server.
func requireCSRF(tokens *tokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.valid(r.Header.Get(csrfHeader)) {
				writeError(w, http.StatusForbidden, "missing or invalid anti-forgery token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireWriteRole rejects mutations from the guest role. With an empty
// write token the server is open, which suits local demo use.
func requireWriteRole(writeToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if writeToken != "" && r.Header.Get("Authorization") != "Bearer "+writeToken {
				writeError(w, http.StatusForbidden, "guests cannot modify the plan")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
