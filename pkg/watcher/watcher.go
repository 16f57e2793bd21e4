// Package watcher waits for kube-bench to drop its JSON results on the
// shared volume. The scanner and the notifier only rendezvous through the
// filesystem, so the watcher polls and checks that the file size is stable
// before trying to parse it.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlaudaDevops/toolbox/kube-bench-notifier/pkg/parser"
	"github.com/sirupsen/logrus"
)

// ErrTimeout indicates the scanner never produced a complete results file
// within the wait window.
var ErrTimeout = errors.New("timed out waiting for kube-bench results")

// Default polling behavior, matching the scanner sidecar deployment.
const (
	DefaultTimeout         = 300 * time.Second
	DefaultPollInterval    = 2 * time.Second
	DefaultStabilityWindow = 3 * time.Second
)

// Watcher polls a directory for kube-bench JSON output.
type Watcher struct {
	Dir             string
	Timeout         time.Duration
	PollInterval    time.Duration
	StabilityWindow time.Duration

	logger *logrus.Logger
}

// New creates a Watcher for the given directory with default timing.
func New(dir string, timeout time.Duration, logger *logrus.Logger) *Watcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Watcher{
		Dir:             dir,
		Timeout:         timeout,
		PollInterval:    DefaultPollInterval,
		StabilityWindow: DefaultStabilityWindow,
		logger:          logger,
	}
}

// Wait blocks until a complete, parseable results file appears or the wait
// window elapses. A file that is present but still failing to parse when the
// window closes is reported as malformed rather than as a timeout.
func (w *Watcher) Wait(ctx context.Context) (*parser.Report, error) {
	w.logger.Infof("Monitoring kube-bench output directory: %s", w.Dir)

	deadline := time.Now().Add(w.Timeout)
	var lastFound string
	var lastParseErr error

	for time.Now().Before(deadline) {
		latest, err := w.latestResultFile()
		if err != nil {
			w.logger.Warnf("Error scanning output directory: %v", err)
		} else if latest != "" {
			if latest != lastFound {
				w.logger.Infof("Found kube-bench output file: %s", latest)
				lastFound = latest
			}

			stable, err := w.isFileComplete(ctx, latest)
			if err != nil {
				return nil, err
			}
			if stable {
				report, err := parser.ParseFile(latest)
				if err == nil {
					w.logger.Info("Kube-bench output processed successfully")
					return report, nil
				}
				// The scanner may still be writing; keep polling and
				// remember the failure in case it never completes.
				lastParseErr = err
				w.logger.Warnf("Results file not yet parseable: %v", err)
			}
		}

		if err := sleepCtx(ctx, w.PollInterval); err != nil {
			return nil, err
		}
	}

	if lastParseErr != nil {
		return nil, lastParseErr
	}
	return nil, fmt.Errorf("%w after %s", ErrTimeout, w.Timeout)
}

// latestResultFile returns the most recently modified JSON file in the
// watched directory, or "" when none exist yet.
func (w *Watcher) latestResultFile() (string, error) {
	matches, err := filepath.Glob(filepath.Join(w.Dir, "*.json"))
	if err != nil {
		return "", err
	}

	var latest string
	var latestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = path
			latestMod = info.ModTime()
		}
	}
	return latest, nil
}

// isFileComplete reports whether the file size is non-zero and unchanged
// across the stability window. File-close events are not visible across
// containers, so size stability is the completion signal.
func (w *Watcher) isFileComplete(ctx context.Context, path string) (bool, error) {
	before, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	if err := sleepCtx(ctx, w.StabilityWindow); err != nil {
		return false, err
	}
	after, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	return after.Size() > 0 && before.Size() == after.Size(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
