package hardware

import (
	"context"
	"encoding/json"

	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
)

// sayCommand is the payload for arvis/audio/say.
type sayCommand struct {
	Text string `json:"text"`
}

// Speaker sends spoken responses to the speech output service.
//
// Speech is best-effort: a dead audio service must never fail the
// action that triggered the response, so Say reports success as a bool
// rather than an error the caller would be tempted to propagate.
type Speaker struct {
	mqtt   Publisher
	logger Logger
}

// NewSpeaker creates a speaker adapter.
func NewSpeaker(publisher Publisher) *Speaker {
	return &Speaker{
		mqtt:   publisher,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the adapter.
func (s *Speaker) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Say queues text for speech output. Returns false when delivery fails.
func (s *Speaker) Say(ctx context.Context, text string) bool {
	if text == "" {
		return true
	}
	if err := ctx.Err(); err != nil {
		return false
	}

	payload, err := json.Marshal(sayCommand{Text: text})
	if err != nil {
		return false
	}

	if err := s.mqtt.Publish(mqtt.Topics{}.AudioSay(), payload, commandQoS, false); err != nil {
		s.logger.Warn("speech delivery failed", "error", err)
		return false
	}

	s.logger.Debug("speech queued", "text", text)
	return true
}
