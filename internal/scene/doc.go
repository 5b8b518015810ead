// Package scene provides lighting/voice scene management for Arvis Core.
//
// A scene is a named room mood: a light setting (colour, brightness),
// an optional LED animation, and an optional voice line spoken when the
// scene is applied. Scenes are persisted in SQLite, cached in memory by
// the Registry, and applied by the Activator.
//
// # Key Types
//
//   - Scene: named light/animation/voice configuration
//   - Repository: persistence interface (SQLite implementation included)
//   - Registry: thread-safe in-memory cache wrapping a Repository
//   - Activator: applies a scene through the hardware adapters and
//     publishes a "scene.activated" event
//
// # Thread Safety
//
// Registry and Activator are safe for concurrent use.
//
// # Usage
//
//	repo := scene.NewSQLiteRepository(db.DB)
//	registry := scene.NewRegistry(repo)
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//
//	activator := scene.NewActivator(registry, lights, audio, eventBus)
//	if _, err := activator.Activate(ctx, "entry", "presence"); err != nil {
//	    ...
//	}
package scene
