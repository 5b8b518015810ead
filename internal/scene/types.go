package scene

import "time"

// Scene is a named room mood: a light setting plus an optional
// animation and an optional voice line spoken on activation.
type Scene struct {
	// Identity
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`

	// Description (optional)
	Description *string `json:"description,omitempty"`

	// Enabled controls whether the scene can be activated.
	Enabled bool `json:"enabled"`

	// Lights is the target light setting. Nil leaves the lights alone
	// (voice-only scenes).
	Lights *LightSetting `json:"lights,omitempty"`

	// Animation is an optional LED animation name (e.g. "golden_shimmer").
	Animation *string `json:"animation,omitempty"`

	// Voice is an optional line spoken when the scene is applied.
	Voice *string `json:"voice,omitempty"`

	// SortOrder for UI display.
	SortOrder int `json:"sort_order"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LightSetting describes the target state of the room light strip.
type LightSetting struct {
	// On turns the strip on or off. When false the other fields are
	// ignored.
	On bool `json:"on"`

	// Colour is a hex colour string (#RRGGBB). Empty keeps the current colour.
	Colour string `json:"colour,omitempty"`

	// Brightness is 0-255. Zero keeps the current brightness.
	Brightness int `json:"brightness,omitempty"`
}

// DeepCopy creates an independent copy of the Scene. Pointer fields are
// cloned so cache entries cannot be mutated through returned values.
func (s *Scene) DeepCopy() *Scene {
	if s == nil {
		return nil
	}

	cpy := *s
	cpy.Description = cloneStringPtr(s.Description)
	cpy.Animation = cloneStringPtr(s.Animation)
	cpy.Voice = cloneStringPtr(s.Voice)
	if s.Lights != nil {
		lights := *s.Lights
		cpy.Lights = &lights
	}
	return &cpy
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
