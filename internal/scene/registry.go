package scene

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry and Activator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides scene management with caching and thread safety.
// It wraps a Repository and keeps an in-memory cache for fast lookups;
// CRUD operations keep the cache in sync.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Scene // by ID
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a new scene registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Scene),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// RefreshCache reloads all scenes from the repository into the cache.
// Call on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	scenes, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading scenes: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Scene, len(scenes))
	for i := range scenes {
		s := scenes[i]
		r.cache[s.ID] = s.DeepCopy()
	}

	r.logger.Info("scene cache refreshed", "count", len(scenes))
	return nil
}

// Get retrieves a scene by ID. The result is a deep copy.
func (r *Registry) Get(_ context.Context, id string) (*Scene, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}
	return nil, ErrSceneNotFound
}

// GetBySlug retrieves a scene by its slug. The result is a deep copy.
func (r *Registry) GetBySlug(_ context.Context, slug string) (*Scene, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, s := range r.cache {
		if s.Slug == slug {
			return s.DeepCopy(), nil
		}
	}
	return nil, ErrSceneNotFound
}

// List retrieves all scenes as deep copies, sorted by sort_order then
// name for deterministic ordering.
func (r *Registry) List(_ context.Context) ([]Scene, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	scenes := make([]Scene, 0, len(r.cache))
	for _, s := range r.cache {
		scenes = append(scenes, *s.DeepCopy())
	}
	sortScenes(scenes)
	return scenes, nil
}

// Create validates and persists a new scene, then caches it.
// A missing ID is generated.
func (r *Registry) Create(ctx context.Context, s *Scene) error {
	if s.ID == "" {
		s.ID = GenerateID()
	}
	if err := Validate(s); err != nil {
		return err
	}

	if err := r.repo.Create(ctx, s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[s.ID] = s.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("scene created", "scene_id", s.ID, "slug", s.Slug)
	return nil
}

// Update validates and persists changes to an existing scene.
func (r *Registry) Update(ctx context.Context, s *Scene) error {
	if err := Validate(s); err != nil {
		return err
	}

	if err := r.repo.Update(ctx, s); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[s.ID] = s.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("scene updated", "scene_id", s.ID, "slug", s.Slug)
	return nil
}

// Delete removes a scene from the repository and the cache.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("scene deleted", "scene_id", id)
	return nil
}

// Count returns the number of cached scenes.
func (r *Registry) Count() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

func sortScenes(scenes []Scene) {
	sort.Slice(scenes, func(i, j int) bool {
		if scenes[i].SortOrder != scenes[j].SortOrder {
			return scenes[i].SortOrder < scenes[j].SortOrder
		}
		return scenes[i].Name < scenes[j].Name
	})
}
