package transcription

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandEngine drives an external speech recognizer process, one
// invocation per chunk. Each stdout line is a partial hypothesis; the
// process exiting cleanly makes the last line the final result. This
// keeps the recognizer itself a black box behind a pipe.
type CommandEngine struct {
	argv []string
}

func NewCommandEngine(argv []string) *CommandEngine {
	return &CommandEngine{argv: argv}
}

func (e *CommandEngine) Transcribe(ctx context.Context, audioPath, language string, onResult func(Result)) error {
	if len(e.argv) == 0 {
		return fmt.Errorf("no transcription command configured")
	}

	args := make([]string, len(e.argv))
	for i, a := range e.argv {
		a = strings.ReplaceAll(a, "{file}", audioPath)
		a = strings.ReplaceAll(a, "{lang}", language)
		args[i] = a
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("unable to pipe recognizer output: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start recognizer: %w", err)
	}

	var last string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if last != "" {
			onResult(Result{Text: last})
		}
		last = line
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			// The newest hypothesis is still pending when the
			// recognizer is killed; deliver it so the timeout path
			// keeps the freshest text.
			if last != "" {
				onResult(Result{Text: last})
			}
			return ctx.Err()
		}
		return fmt.Errorf("recognizer failed: %w", err)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("recognizer output: %w", err)
	}

	if last != "" {
		onResult(Result{Text: last, Final: true})
	}
	return nil
}
