package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultCommand reads the utterance from stdin.
const DefaultCommand = "espeak-ng -v {lang} --stdin"

const languagePlaceholder = "{lang}"

// Engine speaks through an external text-to-speech binary. Each utterance is
// one process; cancelling the context kills it.
type Engine struct {
	binary string
	args   []string
	logger *slog.Logger
}

func New(commandLine string, logger *slog.Logger) (*Engine, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = strings.Fields(DefaultCommand)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		binary: fields[0],
		args:   fields[1:],
		logger: logger,
	}, nil
}

// Available reports whether the configured binary is on PATH.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

func (e *Engine) Speak(ctx context.Context, text, language string, done func(error)) error {
	args := make([]string, 0, len(e.args))
	for _, arg := range e.args {
		args = append(args, strings.ReplaceAll(arg, languagePlaceholder, language))
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = io.Discard
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.binary, err)
	}
	e.logger.Debug("speech_process_started", "binary", e.binary, "pid", cmd.Process.Pid, "language", language)

	go func() {
		err := cmd.Wait()
		switch {
		case ctx.Err() != nil:
			err = ctx.Err()
		case err != nil:
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && strings.TrimSpace(stderr.String()) != "" {
				err = fmt.Errorf("%s: %w: %s", e.binary, err, strings.TrimSpace(stderr.String()))
			} else {
				err = fmt.Errorf("%s: %w", e.binary, err)
			}
		}
		if done != nil {
			done(err)
		}
	}()
	return nil
}
