// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package watch re-lints templates as files change on disk.
//
// File system events are collected into batches with a debounce window so
// that a burst of saves produces a single lint run. Lint runs are further
// throttled with a token bucket so that a tool rewriting hundreds of files
// does not saturate the machine.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/templint/services/templint/lint"
)

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Event is delivered to the handler after each debounced batch.
type Event struct {
	// Results holds one result per changed file that still exists, in
	// path order.
	Results []*lint.LintResult

	// Removed lists changed files that no longer exist.
	Removed []string

	// Err is non-nil when linting the batch failed.
	Err error

	// Time is when the batch was linted.
	Time time.Time
}

// Handler receives lint events. It is called from a single goroutine.
type Handler func(Event)

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for more changes before linting.
	// Default: 150ms
	Debounce time.Duration

	// BufferSize is the size of the pending change channel.
	// Default: 1024
	BufferSize int

	// MinInterval is the minimum time between two lint runs.
	// Default: 250ms
	MinInterval time.Duration

	// Logger receives watcher diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Debounce:    150 * time.Millisecond,
		BufferSize:  1024,
		MinInterval: 250 * time.Millisecond,
	}
}

// Watcher lints files under a root directory whenever they change.
//
// # Thread Safety
//
// Safe for concurrent use. The handler is called from a single goroutine.
type Watcher struct {
	root     string
	runner   *lint.Runner
	handler  Handler
	debounce time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger

	fsw      *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	mu       sync.Mutex
	watching bool
}

// New creates a watcher for root.
//
// # Inputs
//
//   - root: Directory to watch recursively.
//   - runner: Runner used to lint changed files. Its exclude patterns
//     also decide which paths are watched.
//   - handler: Receives one Event per debounced batch.
//   - opts: Optional configuration (nil uses defaults).
//
// # Outputs
//
//   - *Watcher: Ready-to-use watcher (call Start to begin watching).
//   - error: Non-nil if root is not a directory or the OS watcher could
//     not be created.
func New(root string, runner *lint.Runner, handler Handler, opts *Options) (*Watcher, error) {
	if runner == nil || handler == nil {
		return nil, fmt.Errorf("%w: runner and handler are required", lint.ErrInvalidInput)
	}
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", lint.ErrInvalidInput, root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultOptions().BufferSize
	}

	return &Watcher{
		root:     filepath.Clean(root),
		runner:   runner,
		handler:  handler,
		debounce: opts.Debounce,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With(slog.String("component", "watch")),
		fsw:      fsw,
		changes:  make(chan string, bufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins watching.
//
// # Description
//
// Spawns an event processor and a debouncer. Both exit when Stop is
// called or ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: nil context", lint.ErrInvalidInput)
	}

	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.watching = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		// The watcher cannot be restarted once its fsnotify handle is closed.
		w.stopOnce.Do(func() {
			close(w.done)
			_ = w.fsw.Close()
		})
		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
		return err
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	w.logger.Info("Watching for changes", slog.String("root", w.root))
	return nil
}

// Stop stops watching and waits for in-flight lint runs to finish.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
		w.wg.Wait()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching returns true if the watcher is currently active.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

// addRecursive adds dir and its subdirectories to the watch list.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.runner.SkipDir(w.root, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// processEvents forwards relevant fsnotify events to the debouncer.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory",
							slog.String("path", event.Name),
							slog.String("error", err.Error()),
						)
					}
					continue
				}
			}

			if !w.runner.Accepts(w.root, event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				w.logger.Warn("Change buffer full, dropping event", slog.String("path", event.Name))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}

// debounceLoop batches changes and lints them after the debounce window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.changes:
			pending[path] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			stopTimer()
			paths := make([]string, 0, len(pending))
			for path := range pending {
				paths = append(paths, path)
			}
			clear(pending)

			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.handler(w.lintBatch(ctx, paths))
		}
	}
}

// lintBatch lints the files that still exist and reports the rest as
// removed.
func (w *Watcher) lintBatch(ctx context.Context, paths []string) Event {
	sort.Strings(paths)

	existing := make([]string, 0, len(paths))
	var removed []string
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			removed = append(removed, path)
			continue
		}
		existing = append(existing, path)
	}

	ctx, span := startBatchSpan(ctx, len(existing), len(removed))
	defer span.End()

	event := Event{Removed: removed, Time: time.Now()}
	if len(existing) > 0 {
		event.Results, event.Err = w.runner.LintFiles(ctx, existing)
	}
	setBatchSpanResult(span, event.Err)
	recordBatch(ctx, len(existing), event.Err)

	if event.Err != nil {
		w.logger.Warn("Lint after change failed",
			slog.Int("files", len(existing)),
			slog.String("error", event.Err.Error()),
		)
	} else {
		w.logger.Debug("Linted changed files",
			slog.Int("files", len(existing)),
			slog.Int("removed", len(removed)),
		)
	}
	return event
}
