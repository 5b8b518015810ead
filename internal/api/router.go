package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Room state
		r.Route("/state", func(r chi.Router) {
			r.Get("/", s.handleGetState)
			r.Post("/transition", s.handleTransition)
		})

		// Scenes
		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", s.handleListScenes)
			r.Post("/{slug}/activate", s.handleActivateScene)
		})

		// Intents: dispatch a structured command, or feed raw text
		// through the voice pipeline's extraction stage.
		r.Post("/intent", s.handleDispatchIntent)
		r.Post("/voice/text", s.handleVoiceText)

		// Presence
		r.Route("/presence", func(r chi.Router) {
			r.Get("/", s.handleGetPresence)
			r.Post("/motion", s.handleTriggerMotion)
			r.Post("/exit", s.handleTriggerExit)
		})

		// WebSocket event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"state":   s.state.Current().String(),
	})
}
