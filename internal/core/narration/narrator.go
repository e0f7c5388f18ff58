package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/core/ports"
)

type (
	State  = domain.SpeechState
	Status = domain.SpeechStatus
)

const (
	StateIdle     = domain.SpeechIdle
	StateSpeaking = domain.SpeechSpeaking
	StateStopped  = domain.SpeechStopped
)

// OutcomeObserver receives "started", "completed", "stopped" or "failed".
type OutcomeObserver func(language, outcome string)

// Narrator drives a speech engine. State changes only on Speak, Stop and the
// engine's completion callback.
type Narrator struct {
	engine   ports.SpeechEngine
	logger   *slog.Logger
	observer OutcomeObserver

	mu         sync.Mutex
	state      State
	language   string
	lastErr    error
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewNarrator(engine ports.SpeechEngine, logger *slog.Logger, observer OutcomeObserver) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Narrator{
		engine:   engine,
		logger:   logger,
		observer: observer,
		state:    StateIdle,
		done:     closedChan(),
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Speak narrates result in language, interrupting any utterance in progress.
// Playback outlives ctx's deadline; use Stop to end it early.
func (n *Narrator) Speak(ctx context.Context, result domain.AnalysisResult, language string) error {
	language = NormalizeLanguage(language)
	text := Translate(BuildText(result), language)
	if strings.TrimSpace(text) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "speak", fmt.Errorf("nothing to narrate"))
	}

	playCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	n.closeDoneLocked()
	n.done = make(chan struct{})
	n.generation++
	gen := n.generation
	n.cancel = cancel
	n.language = language
	n.lastErr = nil
	n.transitionLocked(StateSpeaking, "speak")
	n.mu.Unlock()
	n.notify(language, "started")

	err := n.engine.Speak(playCtx, text, language, func(err error) {
		n.finish(gen, err)
	})
	if err != nil {
		n.mu.Lock()
		if n.generation == gen {
			n.lastErr = err
			n.cancel = nil
			n.closeDoneLocked()
			n.transitionLocked(StateIdle, "engine_start_failed")
		}
		n.mu.Unlock()
		cancel()
		n.notify(language, "failed")
		return fmt.Errorf("start speech: %w", err)
	}
	return nil
}

// Stop cancels the current utterance. It is a no-op unless speaking.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if n.state != StateSpeaking {
		n.mu.Unlock()
		return
	}
	cancel := n.cancel
	n.cancel = nil
	language := n.language
	n.closeDoneLocked()
	n.transitionLocked(StateStopped, "stop")
	n.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	n.notify(language, "stopped")
}

func (n *Narrator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *Narrator) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	status := Status{State: n.state, Language: n.language}
	if n.lastErr != nil {
		status.LastError = n.lastErr.Error()
	}
	return status
}

// Done is closed once the current utterance leaves the speaking state.
func (n *Narrator) Done() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.done
}

func (n *Narrator) closeDoneLocked() {
	select {
	case <-n.done:
	default:
		close(n.done)
	}
}

func (n *Narrator) finish(gen uint64, err error) {
	n.mu.Lock()
	if gen != n.generation || n.state != StateSpeaking {
		n.mu.Unlock()
		return
	}
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	language := n.language
	n.closeDoneLocked()
	outcome := "completed"
	switch {
	case err == nil:
		n.transitionLocked(StateIdle, "completed")
	case errors.Is(err, context.Canceled):
		outcome = "stopped"
		n.transitionLocked(StateStopped, "cancelled")
	default:
		outcome = "failed"
		n.lastErr = err
		n.transitionLocked(StateIdle, "failed")
	}
	n.mu.Unlock()
	n.notify(language, outcome)
}

func (n *Narrator) transitionLocked(next State, reason string) {
	prev := n.state
	n.state = next
	n.logger.Info("speech_state_change",
		"from", string(prev),
		"to", string(next),
		"reason", reason,
		"language", n.language,
	)
}

func (n *Narrator) notify(language, outcome string) {
	if n.observer != nil {
		n.observer(language, outcome)
	}
}
