package intent

// Intent is a structured request for action.
//
// Intents are produced by the voice pipeline (from transcribed speech),
// by internal agents (e.g. presence synthesising an entry scene
// trigger), or by the HTTP API.
type Intent struct {
	// Action is the dot-namespaced action name (e.g. "lights.on").
	Action string `json:"action"`

	// Params carries action-specific parameters.
	Params map[string]any `json:"params,omitempty"`

	// Priority is an ordering hint. Currently unused by the router.
	Priority int `json:"priority,omitempty"`

	// Source identifies what generated the intent ("voice", "presence", "api").
	Source string `json:"source"`

	// RawText is the original transcribed text for voice intents.
	RawText string `json:"raw_text,omitempty"`
}

// ActionUnknown is the action assigned when an incoming command payload
// cannot be parsed. It intentionally has no handler, so malformed input
// falls through the standard no-handler path.
const ActionUnknown = "unknown"

// New creates an Intent with a non-nil params map.
func New(action, source string, params map[string]any) Intent {
	if params == nil {
		params = map[string]any{}
	}
	return Intent{Action: action, Params: params, Source: source}
}
