package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arman-h/arvis-core/internal/scene"
)

// lightPlugID is the smart plug alias conventionally wired in series
// with the main room light. Best-effort: commands to it are attempted
// alongside the strip but never fail the intent.
const lightPlugID = "light"

// defaultTimerMinutes is used when a timer.set intent omits the duration.
const defaultTimerMinutes = 5

// RegisterLightHandlers registers the lighting, status, timer, and
// clarification handlers.
func RegisterLightHandlers(r *Router) {
	r.Register("lights.on", handleLightsOn)
	r.Register("lights.off", handleLightsOff)
	r.Register("lights.scene", handleLightsScene)
	r.Register("status.get", handleStatusGet)
	r.Register("timer.set", handleTimerSet)
	r.Register("clarify", handleClarify)
}

func handleLightsOn(ctx context.Context, _ Intent, hctx *Context) error {
	if hctx.Lights != nil {
		if err := hctx.Lights.SetPower(ctx, true); err != nil {
			return fmt.Errorf("turning lights on: %w", err)
		}
	}
	// Also power the companion plug if one is known.
	if hctx.Plugs != nil {
		hctx.Plugs.TurnOn(ctx, lightPlugID)
	}
	hctx.Say(ctx, "Lights on.")
	return nil
}

func handleLightsOff(ctx context.Context, _ Intent, hctx *Context) error {
	if hctx.Lights != nil {
		if err := hctx.Lights.SetPower(ctx, false); err != nil {
			return fmt.Errorf("turning lights off: %w", err)
		}
	}
	if hctx.Plugs != nil {
		hctx.Plugs.TurnOff(ctx, lightPlugID)
	}
	hctx.Say(ctx, "Lights off.")
	return nil
}

func handleLightsScene(ctx context.Context, in Intent, hctx *Context) error {
	slug := strings.ToLower(stringParam(in.Params, "scene"))
	if slug == "" {
		hctx.Say(ctx, "Which scene?")
		return nil
	}
	if hctx.Scenes == nil {
		hctx.Say(ctx, "Scenes are not configured.")
		return nil
	}

	sc, err := hctx.Scenes.Activate(ctx, slug, "voice")
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			hctx.Say(ctx, fmt.Sprintf("I don't know the %s scene.", slug))
			return nil
		}
		return fmt.Errorf("activating scene %q: %w", slug, err)
	}

	// The activator speaks the scene's own voice line when it has one;
	// otherwise confirm with a default.
	if sc.Voice == nil {
		hctx.Say(ctx, fmt.Sprintf("%s mode.", titleCase(slug)))
	}
	return nil
}

func handleStatusGet(ctx context.Context, _ Intent, hctx *Context) error {
	roomState := "unknown"
	if hctx.State != nil {
		roomState = hctx.State.Current().String()
	}

	response := fmt.Sprintf("Room is %s.", roomState)
	if hctx.Lights != nil {
		on, activeScene := hctx.Lights.State()
		if activeScene != "" {
			response = fmt.Sprintf("Room is %s. Lights are in %s mode.", roomState, activeScene)
		} else if on {
			response = fmt.Sprintf("Room is %s. Lights are on.", roomState)
		} else {
			response = fmt.Sprintf("Room is %s. Lights are off.", roomState)
		}
	}

	hctx.Say(ctx, response)
	return nil
}

func handleTimerSet(ctx context.Context, in Intent, hctx *Context) error {
	minutes := intParam(in.Params, "minutes", defaultTimerMinutes)
	// TODO: wire an actual countdown once the timer agent lands.
	hctx.Say(ctx, fmt.Sprintf("Timer set for %d minutes.", minutes))
	return nil
}

func handleClarify(ctx context.Context, in Intent, hctx *Context) error {
	message := stringParam(in.Params, "message")
	if message == "" {
		message = "I didn't catch that."
	}
	hctx.Say(ctx, message)
	return nil
}

// stringParam extracts a string parameter, tolerating absence and wrong
// types (returns "").
func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	s, _ := params[key].(string)
	return s
}

// intParam extracts an integer parameter. JSON decoding yields float64,
// so both numeric forms are accepted.
func intParam(params map[string]any, key string, def int) int {
	if params == nil {
		return def
	}
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// titleCase upper-cases the first letter of a slug for spoken output.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
