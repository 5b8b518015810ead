package scene

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Scene)
		wantErr error
	}{
		{"valid scene", func(*Scene) {}, nil},
		{"empty name", func(s *Scene) { s.Name = "" }, ErrInvalidScene},
		{"name too long", func(s *Scene) { s.Name = strings.Repeat("x", 101) }, ErrInvalidScene},
		{"uppercase slug", func(s *Scene) { s.Slug = "Entry" }, ErrInvalidSlug},
		{"slug with spaces", func(s *Scene) { s.Slug = "movie night" }, ErrInvalidSlug},
		{"hyphenated slug ok", func(s *Scene) { s.Slug = "movie-night" }, nil},
		{"bad colour", func(s *Scene) { s.Lights.Colour = "gold" }, ErrInvalidColour},
		{"short colour", func(s *Scene) { s.Lights.Colour = "#FFF" }, ErrInvalidColour},
		{"empty colour ok", func(s *Scene) { s.Lights.Colour = "" }, nil},
		{"brightness too high", func(s *Scene) { s.Lights.Brightness = 300 }, ErrInvalidBrightness},
		{"negative brightness", func(s *Scene) { s.Lights.Brightness = -1 }, ErrInvalidBrightness},
		{"nil lights ok", func(s *Scene) { s.Lights = nil }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testScene("entry")
			tt.mutate(s)

			err := Validate(s)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Validate(nil) = %v, want ErrInvalidScene", err)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestDeepCopyIndependence(t *testing.T) {
	s := testScene("entry")
	cpy := s.DeepCopy()

	*cpy.Voice = "changed"
	cpy.Lights.Brightness = 0

	if *s.Voice == "changed" {
		t.Error("DeepCopy shares Voice pointer")
	}
	if s.Lights.Brightness == 0 {
		t.Error("DeepCopy shares Lights pointer")
	}
}
