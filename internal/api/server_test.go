package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/infrastructure/config"
	"github.com/arman-h/arvis-core/internal/infrastructure/logging"
	"github.com/arman-h/arvis-core/internal/infrastructure/mqtt"
	"github.com/arman-h/arvis-core/internal/intent"
	"github.com/arman-h/arvis-core/internal/presence"
	"github.com/arman-h/arvis-core/internal/scene"
	"github.com/arman-h/arvis-core/internal/state"
)

// fakeSceneRepo is an in-memory scene repository for handler tests.
type fakeSceneRepo struct {
	scenes []scene.Scene
}

func (f *fakeSceneRepo) GetByID(_ context.Context, id string) (*scene.Scene, error) {
	for i := range f.scenes {
		if f.scenes[i].ID == id {
			return f.scenes[i].DeepCopy(), nil
		}
	}
	return nil, scene.ErrSceneNotFound
}

func (f *fakeSceneRepo) GetBySlug(_ context.Context, slug string) (*scene.Scene, error) {
	for i := range f.scenes {
		if f.scenes[i].Slug == slug {
			return f.scenes[i].DeepCopy(), nil
		}
	}
	return nil, scene.ErrSceneNotFound
}

func (f *fakeSceneRepo) List(_ context.Context) ([]scene.Scene, error) {
	return f.scenes, nil
}

func (f *fakeSceneRepo) Create(_ context.Context, s *scene.Scene) error {
	f.scenes = append(f.scenes, *s.DeepCopy())
	return nil
}

func (f *fakeSceneRepo) Update(context.Context, *scene.Scene) error { return nil }
func (f *fakeSceneRepo) Delete(context.Context, string) error       { return nil }

// nopSubscriber satisfies the detector's MQTT dependency without a broker.
type nopSubscriber struct{}

func (nopSubscriber) Subscribe(string, byte, mqtt.MessageHandler) error { return nil }
func (nopSubscriber) Unsubscribe(string) error                          { return nil }

// testEnv wires a full server against in-memory collaborators.
type testEnv struct {
	bus     *bus.Bus
	state   *state.Manager
	agent   *presence.Agent
	router  *intent.Router
	handler http.Handler
}

func newTestEnv(t *testing.T, scenes ...scene.Scene) *testEnv {
	t.Helper()

	b := bus.New()
	sm := state.NewManager(b)

	reg := scene.NewRegistry(&fakeSceneRepo{scenes: scenes})
	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache: %v", err)
	}
	act := scene.NewActivator(reg, nil, nil, b)

	rt := intent.NewRouter(b, &intent.Context{State: sm, Bus: b})

	agent := presence.NewAgent(b, sm, presence.AgentConfig{
		OccupancyTimeout: time.Hour,
		CheckInterval:    time.Minute,
	})
	agent.Start(context.Background())
	t.Cleanup(agent.Stop)

	det := presence.NewDetector(nopSubscriber{}, b, 0)

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")

	srv, err := New(Deps{
		Logger:   logger,
		Bus:      b,
		State:    sm,
		Scenes:   reg,
		Activate: act,
		Router:   rt,
		Agent:    agent,
		Detector: det,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testEnv{
		bus:     b,
		state:   sm,
		agent:   agent,
		router:  rt,
		handler: srv.buildRouter(),
	}
}

// do performs a request against the test server and decodes the JSON body.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

func TestNewRequiresCoreDeps(t *testing.T) {
	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	b := bus.New()

	if _, err := New(Deps{Bus: b, State: state.NewManager(nil)}); err == nil {
		t.Error("expected error when logger missing")
	}
	if _, err := New(Deps{Logger: logger, State: state.NewManager(nil)}); err == nil {
		t.Error("expected error when bus missing")
	}
	if _, err := New(Deps{Logger: logger, Bus: b}); err == nil {
		t.Error("expected error when state manager missing")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/v1/health", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
	if body["state"] != "empty" {
		t.Errorf("state = %v, want empty", body["state"])
	}
}

func TestGetState(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/v1/state", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["state"] != "empty" {
		t.Errorf("state = %v, want empty", body["state"])
	}

	transitions, ok := body["transitions"].([]any)
	if !ok {
		t.Fatalf("transitions missing or wrong type: %v", body["transitions"])
	}
	if len(transitions) != 1 || transitions[0] != "occupied" {
		t.Errorf("transitions = %v, want [occupied]", transitions)
	}
}

func TestTransition(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/state/transition",
		map[string]any{"state": "occupied"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["state"] != "occupied" || body["previous"] != "empty" {
		t.Errorf("body = %v", body)
	}
	if env.state.Current() != state.StateOccupied {
		t.Errorf("manager state = %v, want occupied", env.state.Current())
	}
}

func TestTransitionRejected(t *testing.T) {
	env := newTestEnv(t)

	// empty -> sleep is not in the graph
	code, body := env.do(t, http.MethodPost, "/api/v1/state/transition",
		map[string]any{"state": "sleep"})
	if code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", code)
	}
	if body["code"] != ErrCodeConflict {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeConflict)
	}
	if env.state.Current() != state.StateEmpty {
		t.Errorf("state changed on rejected transition: %v", env.state.Current())
	}
}

func TestTransitionForce(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/v1/state/transition",
		map[string]any{"state": "sleep", "force": true})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if env.state.Current() != state.StateSleep {
		t.Errorf("state = %v, want sleep", env.state.Current())
	}
}

func TestTransitionUnknownState(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/v1/state/transition",
		map[string]any{"state": "hovering"})
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func testScene(id, slug string, order int, enabled bool) scene.Scene {
	now := time.Now().UTC()
	return scene.Scene{
		ID:        id,
		Name:      slug,
		Slug:      slug,
		Enabled:   enabled,
		SortOrder: order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestListScenes(t *testing.T) {
	env := newTestEnv(t,
		testScene("s1", "cozy", 2, true),
		testScene("s2", "entry", 1, true),
	)

	code, body := env.do(t, http.MethodGet, "/api/v1/scenes", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}

	scenes, ok := body["scenes"].([]any)
	if !ok || len(scenes) != 2 {
		t.Fatalf("scenes = %v", body["scenes"])
	}
	first, ok := scenes[0].(map[string]any)
	if !ok {
		t.Fatalf("scene entry wrong type: %v", scenes[0])
	}
	if first["slug"] != "entry" {
		t.Errorf("first scene = %v, want entry (sort order)", first["slug"])
	}
}

func TestActivateScene(t *testing.T) {
	env := newTestEnv(t, testScene("s1", "cozy", 1, true))

	activated := 0
	env.bus.Subscribe(scene.EventSceneActivated, func(context.Context, bus.Event) error {
		activated++
		return nil
	})

	code, body := env.do(t, http.MethodPost, "/api/v1/scenes/cozy/activate", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["activated"] != "cozy" {
		t.Errorf("activated = %v, want cozy", body["activated"])
	}
	if body["trigger"] != "api" {
		t.Errorf("trigger = %v, want api", body["trigger"])
	}
	if activated != 1 {
		t.Errorf("scene.activated events = %d, want 1", activated)
	}
}

func TestActivateSceneNotFound(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/scenes/missing/activate", nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if body["code"] != ErrCodeNotFound {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeNotFound)
	}
}

func TestActivateSceneDisabled(t *testing.T) {
	env := newTestEnv(t, testScene("s1", "cozy", 1, false))

	code, _ := env.do(t, http.MethodPost, "/api/v1/scenes/cozy/activate", nil)
	if code != http.StatusConflict {
		t.Errorf("status = %d, want 409", code)
	}
}

func TestDispatchIntent(t *testing.T) {
	env := newTestEnv(t)

	var got intent.Intent
	env.router.Register("lights_on", func(_ context.Context, in intent.Intent, _ *intent.Context) error {
		got = in
		return nil
	})

	code, body := env.do(t, http.MethodPost, "/api/v1/intent",
		map[string]any{"action": "lights_on", "params": map[string]any{"brightness": 128}})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["handled"] != true {
		t.Errorf("handled = %v, want true", body["handled"])
	}
	if got.Action != "lights_on" || got.Source != "api" {
		t.Errorf("dispatched intent = %+v", got)
	}
	if got.Params["brightness"] != float64(128) {
		t.Errorf("params = %v", got.Params)
	}
}

func TestDispatchIntentUnhandled(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/intent",
		map[string]any{"action": "levitate"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["handled"] != false {
		t.Errorf("handled = %v, want false", body["handled"])
	}
}

func TestDispatchIntentMissingAction(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(t, http.MethodPost, "/api/v1/intent", map[string]any{})
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestVoiceTextUnavailable(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/voice/text",
		map[string]any{"text": "turn on the lights"})
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", code)
	}
	if body["code"] != ErrCodeUnavailable {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeUnavailable)
	}
}

func TestPresenceFlow(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodGet, "/api/v1/presence", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["running"] != true {
		t.Errorf("running = %v, want true", body["running"])
	}
	if _, present := body["seconds_since_motion"]; present {
		t.Error("seconds_since_motion should be absent before any motion")
	}

	// Motion from empty: entry path, room becomes occupied.
	code, body = env.do(t, http.MethodPost, "/api/v1/presence/motion",
		map[string]any{"sensor_id": "pir-door"})
	if code != http.StatusAccepted {
		t.Fatalf("motion status = %d, want 202", code)
	}
	if body["sensor_id"] != "pir-door" {
		t.Errorf("sensor_id = %v", body["sensor_id"])
	}
	if env.state.Current() != state.StateOccupied {
		t.Fatalf("state = %v, want occupied after motion", env.state.Current())
	}

	code, body = env.do(t, http.MethodGet, "/api/v1/presence", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if _, present := body["seconds_since_motion"]; !present {
		t.Error("seconds_since_motion missing after motion")
	}

	// Manual exit bypasses the inactivity timer.
	code, body = env.do(t, http.MethodPost, "/api/v1/presence/exit", nil)
	if code != http.StatusOK {
		t.Fatalf("exit status = %d, want 200", code)
	}
	if body["state"] != "empty" {
		t.Errorf("state after exit = %v, want empty", body["state"])
	}
}

func TestMotionDefaultsSensorID(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(t, http.MethodPost, "/api/v1/presence/motion", nil)
	if code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", code)
	}
	if body["sensor_id"] != "manual" {
		t.Errorf("sensor_id = %v, want manual", body["sensor_id"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want fixed-id (client value preserved)", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://panel.local")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://panel.local" {
		t.Errorf("Allow-Origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestInvalidJSONBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/state/transition",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
