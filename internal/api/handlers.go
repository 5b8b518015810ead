package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arman-h/arvis-core/internal/intent"
	"github.com/arman-h/arvis-core/internal/scene"
	"github.com/arman-h/arvis-core/internal/state"
)

// decodeJSON decodes a request body into v. An empty body is reported
// as io.EOF so handlers with optional bodies can treat it as defaults.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// =============================================================================
// Room state
// =============================================================================

// handleGetState returns the current room state and its legal transitions.
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	current := s.state.Current()

	var targets []string
	for _, candidate := range state.AllStates() {
		if candidate != current && s.state.CanTransition(candidate) {
			targets = append(targets, candidate.String())
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":       current.String(),
		"transitions": targets,
	})
}

// transitionRequest is the body for POST /state/transition.
type transitionRequest struct {
	State string `json:"state"`
	Force bool   `json:"force"`
}

// handleTransition requests a room state transition.
func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	target := state.RoomState(req.State)
	if !target.Valid() {
		writeBadRequest(w, "unknown state: "+req.State)
		return
	}

	from := s.state.Current()
	if !s.state.Transition(r.Context(), target, req.Force) {
		writeConflict(w, "transition "+from.String()+" -> "+target.String()+" is not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":    s.state.Current().String(),
		"previous": from.String(),
	})
}

// =============================================================================
// Scenes
// =============================================================================

// handleListScenes returns all scenes, sorted for display.
func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := s.scenes.List(r.Context())
	if err != nil {
		s.logger.Error("listing scenes", "error", err)
		writeInternalError(w, "failed to list scenes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scenes": scenes,
		"count":  len(scenes),
	})
}

// activateRequest is the optional body for POST /scenes/{slug}/activate.
type activateRequest struct {
	Trigger string `json:"trigger"`
}

// handleActivateScene activates a scene by slug (or ID).
func (s *Server) handleActivateScene(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	req := activateRequest{Trigger: "api"}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Trigger == "" {
		req.Trigger = "api"
	}

	sc, err := s.activate.Activate(r.Context(), slug, req.Trigger)
	switch {
	case errors.Is(err, scene.ErrSceneNotFound):
		writeNotFound(w, "scene not found: "+slug)
		return
	case errors.Is(err, scene.ErrSceneDisabled):
		writeConflict(w, "scene is disabled: "+slug)
		return
	case err != nil:
		s.logger.Error("activating scene", "slug", slug, "error", err)
		writeInternalError(w, "scene activation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activated": sc.Slug,
		"trigger":   req.Trigger,
	})
}

// =============================================================================
// Intents
// =============================================================================

// intentRequest is the body for POST /intent.
type intentRequest struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// handleDispatchIntent dispatches a structured intent through the
// router, exactly as a voice command would be.
func (s *Server) handleDispatchIntent(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Action == "" {
		writeBadRequest(w, "action is required")
		return
	}

	handled := s.router.Dispatch(r.Context(), intent.New(req.Action, "api", req.Params))

	writeJSON(w, http.StatusOK, map[string]any{
		"action":  req.Action,
		"handled": handled,
	})
}

// voiceTextRequest is the body for POST /voice/text.
type voiceTextRequest struct {
	Text string `json:"text"`
}

// handleVoiceText feeds typed text through the voice pipeline's intent
// extraction, for clients without a microphone.
func (s *Server) handleVoiceText(w http.ResponseWriter, r *http.Request) {
	if s.voice == nil {
		writeUnavailable(w, "voice pipeline not configured")
		return
	}

	var req voiceTextRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Text == "" {
		writeBadRequest(w, "text is required")
		return
	}

	if err := s.voice.HandleText(r.Context(), req.Text); err != nil {
		s.logger.Warn("voice text failed", "error", err)
		writeUnavailable(w, "voice pipeline failure")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"accepted": true,
	})
}

// =============================================================================
// Presence
// =============================================================================

// handleGetPresence reports the presence agent's view of the room.
func (s *Server) handleGetPresence(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"state":   s.state.Current().String(),
		"running": s.agent.Running(),
	}
	if elapsed, ok := s.agent.TimeSinceMotion(); ok {
		resp["seconds_since_motion"] = int(elapsed.Seconds())
	}
	writeJSON(w, http.StatusOK, resp)
}

// motionRequest is the optional body for POST /presence/motion.
type motionRequest struct {
	SensorID string `json:"sensor_id"`
}

// handleTriggerMotion injects a motion signal, subject to the normal
// debounce. Used for verification and by sensors without MQTT.
func (s *Server) handleTriggerMotion(w http.ResponseWriter, r *http.Request) {
	req := motionRequest{SensorID: "manual"}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.SensorID == "" {
		req.SensorID = "manual"
	}

	s.detector.TriggerMotion(r.Context(), req.SensorID)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"sensor_id": req.SensorID,
		"state":     s.state.Current().String(),
	})
}

// handleTriggerExit forces the exit path, bypassing the inactivity
// timer. A no-op when the room is not occupied.
func (s *Server) handleTriggerExit(w http.ResponseWriter, r *http.Request) {
	s.agent.TriggerExit(r.Context())

	writeJSON(w, http.StatusOK, map[string]any{
		"state": s.state.Current().String(),
	})
}
