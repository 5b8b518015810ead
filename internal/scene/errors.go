package scene

import "errors"

// Domain errors for the scene package.
//
// Check with errors.Is():
//
//	if errors.Is(err, scene.ErrSceneNotFound) {
//	    // expected outcome: speak "I don't know that scene"
//	}
var (
	// ErrSceneNotFound is returned when a scene ID or slug does not exist.
	ErrSceneNotFound = errors.New("scene: not found")

	// ErrSceneExists is returned when creating a scene whose ID or slug
	// is already taken.
	ErrSceneExists = errors.New("scene: already exists")

	// ErrSceneDisabled is returned when activating a disabled scene.
	ErrSceneDisabled = errors.New("scene: disabled")

	// ErrInvalidScene is returned when scene validation fails.
	ErrInvalidScene = errors.New("scene: invalid")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("scene: invalid slug")

	// ErrInvalidColour is returned when a light colour is not #RRGGBB.
	ErrInvalidColour = errors.New("scene: invalid colour")

	// ErrInvalidBrightness is returned when brightness is out of range.
	ErrInvalidBrightness = errors.New("scene: invalid brightness")
)
