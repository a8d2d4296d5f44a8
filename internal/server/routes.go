package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notelink/notelink/internal/config"
	"github.com/notelink/notelink/internal/server/handlers"
	servermw "github.com/notelink/notelink/internal/server/middleware"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(authCfg config.AuthConfig, h *handlers.Handler) {
	auth := &servermw.Authenticator{
		Secret: []byte(authCfg.JWTSecret),
		Issuer: authCfg.Issuer,
	}

	s.router.Get("/health", h.HealthHandler)
	s.router.Get("/version", h.VersionHandler)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.ChatHandler)

		r.With(auth.Optional).Post("/notes", h.NoteSubmitHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Require)
			r.Get("/notes", h.AdminListHandler)
			r.Delete("/notes/{id}", h.AdminDeleteHandler)
		})
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":       code,
			"message":    message,
			"request_id": servermw.GetRequestID(r.Context()),
		},
	})
}
