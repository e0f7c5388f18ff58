package narration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/blood-insights/internal/core/domain"
)

type engineFake struct {
	mu       sync.Mutex
	texts    []string
	langs    []string
	ctxs     []context.Context
	dones    []func(error)
	startErr error
}

func (f *engineFake) Speak(ctx context.Context, text, language string, done func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.texts = append(f.texts, text)
	f.langs = append(f.langs, language)
	f.ctxs = append(f.ctxs, ctx)
	f.dones = append(f.dones, done)
	return nil
}

func (f *engineFake) complete(i int, err error) {
	f.mu.Lock()
	done := f.dones[i]
	f.mu.Unlock()
	done(err)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() domain.AnalysisResult {
	return domain.AnalysisResult{
		OverallRiskScore: 72.5,
		RiskLevel:        domain.RiskHigh,
		Summary:          "Several markers are elevated",
		DiseaseRisks: []domain.DiseaseRisk{
			{Disease: "Iron Deficiency Anemia", RiskLevel: domain.RiskModerate, Explanation: "Low ferritin.", Prevention: "Eat iron rich food"},
			{Disease: "Leukocytosis", RiskLevel: domain.RiskLow, Explanation: "WBC slightly high."},
		},
		Recommendations: []domain.Recommendation{
			{Category: domain.CategoryDiet, Action: "Add spinach", Reasoning: "Raises iron"},
			{Category: domain.CategoryExercise, Action: "Walk daily"},
		},
	}
}

func TestBuildTextFixedOrder(t *testing.T) {
	text := BuildText(sampleResult())
	want := "Overall risk score: 72.5 out of 100. Risk level: High. Several markers are elevated. " +
		"Disease risk: Iron Deficiency Anemia. Risk level: Moderate. Low ferritin. Prevention: Eat iron rich food. " +
		"Disease risk: Leukocytosis. Risk level: Low. WBC slightly high. " +
		"Recommendation: Add spinach. Raises iron. Recommendation: Walk daily."
	if text != want {
		t.Fatalf("BuildText() =\n%q\nwant\n%q", text, want)
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate("Risk level: High", "hi"); got != "Risk level: उच्च" {
		t.Fatalf("unexpected hindi translation %q", got)
	}
	if got := Translate("Iron Deficiency Anemia", "te"); got != "ఇనుము లోపం రక్తహీనత" {
		t.Fatalf("expected whole term replaced before its parts, got %q", got)
	}
	if got := Translate("Risk level: High", "fr"); got != "Risk level: High" {
		t.Fatalf("unsupported language should fall back to english, got %q", got)
	}
	if NormalizeLanguage(" TE ") != "te" || NormalizeLanguage("xx") != DefaultLanguage {
		t.Fatalf("unexpected language normalisation")
	}
}

func TestNarratorNaturalCompletion(t *testing.T) {
	engine := &engineFake{}
	var outcomes []string
	n := NewNarrator(engine, quietLogger(), func(_, outcome string) { outcomes = append(outcomes, outcome) })

	if n.State() != StateIdle {
		t.Fatalf("expected idle initially")
	}
	if err := n.Speak(context.Background(), sampleResult(), "hi"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if n.State() != StateSpeaking {
		t.Fatalf("expected speaking, got %s", n.State())
	}
	if engine.langs[0] != "hi" || !strings.Contains(engine.texts[0], "उच्च") {
		t.Fatalf("expected translated hindi text, got %q", engine.texts[0])
	}

	engine.complete(0, nil)
	if n.State() != StateIdle {
		t.Fatalf("expected idle after completion, got %s", n.State())
	}
	if strings.Join(outcomes, ",") != "started,completed" {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
}

func TestNarratorStopCancelsPlayback(t *testing.T) {
	engine := &engineFake{}
	n := NewNarrator(engine, quietLogger(), nil)

	if err := n.Speak(context.Background(), sampleResult(), "en"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	n.Stop()
	if n.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", n.State())
	}
	if engine.ctxs[0].Err() == nil {
		t.Fatalf("expected playback context cancelled")
	}

	engine.complete(0, context.Canceled)
	if n.State() != StateStopped {
		t.Fatalf("late cancellation callback must not change state, got %s", n.State())
	}

	n.Stop()
	if n.State() != StateStopped {
		t.Fatalf("stop while not speaking is a no-op")
	}
}

func TestNarratorIgnoresStaleCompletion(t *testing.T) {
	engine := &engineFake{}
	n := NewNarrator(engine, quietLogger(), nil)

	_ = n.Speak(context.Background(), sampleResult(), "en")
	_ = n.Speak(context.Background(), sampleResult(), "te")
	if engine.ctxs[0].Err() == nil {
		t.Fatalf("expected first utterance interrupted")
	}

	engine.complete(0, context.Canceled)
	if n.State() != StateSpeaking {
		t.Fatalf("stale callback changed state to %s", n.State())
	}
	engine.complete(1, nil)
	if n.State() != StateIdle {
		t.Fatalf("expected idle, got %s", n.State())
	}
}

func TestNarratorSurvivesRequestContextCancellation(t *testing.T) {
	engine := &engineFake{}
	n := NewNarrator(engine, quietLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	_ = n.Speak(ctx, sampleResult(), "en")
	cancel()
	if engine.ctxs[0].Err() != nil {
		t.Fatalf("playback must not be tied to the caller context")
	}
}

func TestNarratorEngineFailure(t *testing.T) {
	engine := &engineFake{}
	n := NewNarrator(engine, quietLogger(), nil)

	_ = n.Speak(context.Background(), sampleResult(), "en")
	engine.complete(0, errors.New("audio device busy"))
	status := n.Status()
	if status.State != StateIdle || status.LastError != "audio device busy" {
		t.Fatalf("unexpected status %+v", status)
	}

	engine.startErr = errors.New("espeak-ng not found")
	if err := n.Speak(context.Background(), sampleResult(), "en"); err == nil {
		t.Fatalf("expected start error")
	}
	if n.State() != StateIdle {
		t.Fatalf("expected idle after failed start, got %s", n.State())
	}
}

func TestNarratorDoneSignalsEndOfUtterance(t *testing.T) {
	engine := &engineFake{}
	n := NewNarrator(engine, quietLogger(), nil)

	select {
	case <-n.Done():
	default:
		t.Fatalf("idle narrator should report done")
	}

	_ = n.Speak(context.Background(), sampleResult(), "en")
	done := n.Done()
	select {
	case <-done:
		t.Fatalf("done closed while speaking")
	default:
	}
	engine.complete(0, nil)
	select {
	case <-done:
	default:
		t.Fatalf("expected done closed after completion")
	}
}
