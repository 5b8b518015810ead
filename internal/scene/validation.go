package scene

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Validation limits.
const (
	maxNameLength = 100
	maxBrightness = 255
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	colourPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Validate checks a scene for structural errors before persistence.
func Validate(s *Scene) error {
	if s == nil {
		return fmt.Errorf("%w: nil scene", ErrInvalidScene)
	}
	if s.Name == "" || len(s.Name) > maxNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidScene, maxNameLength)
	}
	if !slugPattern.MatchString(s.Slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, s.Slug)
	}
	if s.Lights != nil {
		if s.Lights.Colour != "" && !colourPattern.MatchString(s.Lights.Colour) {
			return fmt.Errorf("%w: %q", ErrInvalidColour, s.Lights.Colour)
		}
		if s.Lights.Brightness < 0 || s.Lights.Brightness > maxBrightness {
			return fmt.Errorf("%w: %d", ErrInvalidBrightness, s.Lights.Brightness)
		}
	}
	return nil
}

// GenerateID creates a new unique identifier for a scene.
func GenerateID() string {
	return uuid.NewString()
}
