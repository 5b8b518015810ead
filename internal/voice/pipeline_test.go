package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/arman-h/arvis-core/internal/bus"
	"github.com/arman-h/arvis-core/internal/intent"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeExtractor struct {
	extraction Extraction
	err        error
	gotText    string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (Extraction, error) {
	f.gotText = text
	return f.extraction, f.err
}

type fakeSpeaker struct {
	lines []string
}

func (f *fakeSpeaker) Say(_ context.Context, text string) bool {
	f.lines = append(f.lines, text)
	return true
}

func newTestPipeline(tr *fakeTranscriber, ex *fakeExtractor) (*Pipeline, *fakeSpeaker, *bus.Bus) {
	speaker := &fakeSpeaker{}
	b := bus.New()
	return NewPipeline(tr, ex, b, speaker), speaker, b
}

func TestHandleAudioPublishesVoiceCommand(t *testing.T) {
	tr := &fakeTranscriber{text: "turn on the lights"}
	ex := &fakeExtractor{extraction: Extraction{
		Action: "lights.on",
		Params: map[string]any{},
	}}
	pipeline, speaker, b := newTestPipeline(tr, ex)

	var events []bus.Event
	b.Subscribe(intent.EventVoiceCommand, func(_ context.Context, evt bus.Event) error {
		events = append(events, evt)
		return nil
	})

	if err := pipeline.HandleAudio(context.Background(), []byte("pcm")); err != nil {
		t.Fatalf("HandleAudio error = %v", err)
	}

	if ex.gotText != "turn on the lights" {
		t.Errorf("extractor received %q", ex.gotText)
	}
	if len(events) != 1 {
		t.Fatalf("voice.command events = %d, want 1", len(events))
	}

	payload := events[0].Payload
	if payload["text"] != "turn on the lights" {
		t.Errorf("text payload = %v", payload["text"])
	}
	data, ok := payload["intent"].(map[string]any)
	if !ok {
		t.Fatalf("intent payload missing: %+v", payload)
	}
	if data["action"] != "lights.on" {
		t.Errorf("action = %v", data["action"])
	}
	if len(speaker.lines) != 0 {
		t.Errorf("unexpected speech: %v", speaker.lines)
	}
}

func TestHandleAudioEmptyTranscript(t *testing.T) {
	tr := &fakeTranscriber{text: ""}
	ex := &fakeExtractor{}
	pipeline, speaker, b := newTestPipeline(tr, ex)

	published := 0
	b.Subscribe("*", func(context.Context, bus.Event) error {
		published++
		return nil
	})

	if err := pipeline.HandleAudio(context.Background(), []byte("silence")); err != nil {
		t.Fatalf("HandleAudio error = %v", err)
	}
	if published != 0 {
		t.Error("empty transcript published an event")
	}
	if len(speaker.lines) != 0 {
		t.Errorf("empty transcript spoke: %v", speaker.lines)
	}
}

func TestHandleAudioTranscriberOffline(t *testing.T) {
	tr := &fakeTranscriber{err: ErrBackendOffline}
	ex := &fakeExtractor{}
	pipeline, speaker, _ := newTestPipeline(tr, ex)

	err := pipeline.HandleAudio(context.Background(), []byte("pcm"))
	if !errors.Is(err, ErrBackendOffline) {
		t.Errorf("HandleAudio error = %v, want ErrBackendOffline", err)
	}
	if len(speaker.lines) != 1 || speaker.lines[0] != responseBackendOffline {
		t.Errorf("spoken = %v, want offline apology", speaker.lines)
	}
}

func TestHandleTextExtractorFailure(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("model returned garbage")}
	pipeline, speaker, b := newTestPipeline(&fakeTranscriber{}, ex)

	published := 0
	b.Subscribe("*", func(context.Context, bus.Event) error {
		published++
		return nil
	})

	if err := pipeline.HandleText(context.Background(), "do the thing"); err == nil {
		t.Fatal("expected error from failing extractor")
	}
	if published != 0 {
		t.Error("failed extraction still published an event")
	}
	if len(speaker.lines) != 1 || speaker.lines[0] != responseNotUnderstood {
		t.Errorf("spoken = %v, want not-understood response", speaker.lines)
	}
}

func TestHandleTextUnrecognisedAction(t *testing.T) {
	// Unrecognised text is not a pipeline error: the extractor returns
	// an empty action and the router's unknown path handles it.
	ex := &fakeExtractor{extraction: Extraction{Action: "", Params: map[string]any{}}}
	pipeline, _, b := newTestPipeline(&fakeTranscriber{}, ex)

	var events []bus.Event
	b.Subscribe(intent.EventVoiceCommand, func(_ context.Context, evt bus.Event) error {
		events = append(events, evt)
		return nil
	})

	if err := pipeline.HandleText(context.Background(), "blorp"); err != nil {
		t.Fatalf("HandleText error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("voice.command events = %d, want 1", len(events))
	}
}
