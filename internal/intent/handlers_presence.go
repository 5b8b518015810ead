package intent

import (
	"context"
	"errors"
	"fmt"

	"github.com/arman-h/arvis-core/internal/scene"
)

// Scene slugs used by the presence handlers.
const (
	entrySceneSlug = "entry"
	exitAnimation  = "fade_out"
)

// RegisterPresenceHandlers registers the entry/exit scene handlers.
//
// These fire from the presence agent's notifications (bound via
// Router.BindEvent), not from voice commands.
func RegisterPresenceHandlers(r *Router) {
	r.Register("presence.entry", handlePresenceEntry)
	r.Register("presence.exit", handlePresenceExit)
}

// handlePresenceEntry plays the welcome scene when someone enters.
func handlePresenceEntry(ctx context.Context, _ Intent, hctx *Context) error {
	if hctx.Scenes == nil {
		return nil
	}
	if _, err := hctx.Scenes.Activate(ctx, entrySceneSlug, "presence"); err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			// No entry scene configured; nothing to do.
			return nil
		}
		return fmt.Errorf("activating entry scene: %w", err)
	}
	return nil
}

// handlePresenceExit fades the lights out silently. The occupant has
// already left, so there is no spoken goodbye.
func handlePresenceExit(ctx context.Context, _ Intent, hctx *Context) error {
	if hctx.Lights == nil {
		return nil
	}
	if err := hctx.Lights.Animate(ctx, exitAnimation); err != nil {
		return fmt.Errorf("fading lights out: %w", err)
	}
	return nil
}
