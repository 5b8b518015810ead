package scene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for scene persistence.
// The abstraction keeps the registry testable without a database.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Scene, error)
	GetBySlug(ctx context.Context, slug string) (*Scene, error)
	List(ctx context.Context) ([]Scene, error)
	Create(ctx context.Context, s *Scene) error
	Update(ctx context.Context, s *Scene) error
	Delete(ctx context.Context, id string) error
}

// sceneColumns is the SELECT column list for scene queries.
const sceneColumns = `id, name, slug, description, enabled, lights, animation, voice,
			sort_order, created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a scene by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE id = ?`

	s, err := scanScene(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("querying scene by id: %w", err)
	}
	return s, nil
}

// GetBySlug retrieves a scene by its slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE slug = ?`

	s, err := scanScene(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSceneNotFound
		}
		return nil, fmt.Errorf("querying scene by slug: %w", err)
	}
	return s, nil
}

// List retrieves all scenes ordered by sort_order then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	defer rows.Close()

	var scenes []Scene
	for rows.Next() {
		s, scanErr := scanScene(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scanning scene row: %w", scanErr)
		}
		scenes = append(scenes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene rows: %w", err)
	}
	return scenes, nil
}

// Create inserts a new scene.
func (r *SQLiteRepository) Create(ctx context.Context, s *Scene) error {
	lightsJSON, err := marshalLights(s.Lights)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `
		INSERT INTO scenes (
			id, name, slug, description, enabled, lights, animation, voice,
			sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.Slug,
		nullableString(s.Description),
		boolToInt(s.Enabled),
		lightsJSON,
		nullableString(s.Animation),
		nullableString(s.Voice),
		s.SortOrder,
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSceneExists
		}
		return fmt.Errorf("inserting scene: %w", err)
	}
	return nil
}

// Update replaces an existing scene.
func (r *SQLiteRepository) Update(ctx context.Context, s *Scene) error {
	lightsJSON, err := marshalLights(s.Lights)
	if err != nil {
		return err
	}

	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE scenes SET
			name = ?, slug = ?, description = ?, enabled = ?, lights = ?,
			animation = ?, voice = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.Slug,
		nullableString(s.Description),
		boolToInt(s.Enabled),
		lightsJSON,
		nullableString(s.Animation),
		nullableString(s.Voice),
		s.SortOrder,
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating scene: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// Delete removes a scene by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting scene: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrSceneNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanScene.
type scanner interface {
	Scan(dest ...any) error
}

// scanScene reads one scene row.
func scanScene(row scanner) (*Scene, error) {
	var (
		s           Scene
		description sql.NullString
		enabled     int
		lightsJSON  sql.NullString
		animation   sql.NullString
		voice       sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&s.ID, &s.Name, &s.Slug, &description, &enabled, &lightsJSON,
		&animation, &voice, &s.SortOrder, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Enabled = enabled != 0
	if description.Valid {
		s.Description = &description.String
	}
	if animation.Valid {
		s.Animation = &animation.String
	}
	if voice.Valid {
		s.Voice = &voice.String
	}
	if lightsJSON.Valid && lightsJSON.String != "" {
		var lights LightSetting
		if err := json.Unmarshal([]byte(lightsJSON.String), &lights); err != nil {
			return nil, fmt.Errorf("unmarshalling lights: %w", err)
		}
		s.Lights = &lights
	}

	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &s, nil
}

func marshalLights(l *LightSetting) (any, error) {
	if l == nil {
		return nil, nil //nolint:nilnil // SQL NULL for voice-only scenes
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshalling lights: %w", err)
	}
	return string(data), nil
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation detects SQLite UNIQUE constraint failures without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
