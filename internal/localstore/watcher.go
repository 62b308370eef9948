package localstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/careerlift/internal/storage"
)

// SignalCallback is called once per settled signal file change.
type SignalCallback func(sig Signal)

const debounce = 50 * time.Millisecond

// Watch watches the signal directory until ctx is cancelled and calls cb
// for every signal written there, by this process or any other sharing the
// directory. Bursts of events on the same file collapse into one callback.
func Watch(ctx context.Context, signals storage.Provider, logger *slog.Logger, cb SignalCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(signals.Root()); err != nil {
		return err
	}

	logger.Info("signal watcher: started", slog.String("dir", signals.Root()))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(name string) {
		pending[name] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("signal watcher: stopped")
			return nil

		case <-timerCh:
			for name := range pending {
				delete(pending, name)
				deliver(signals, name, logger, cb)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule(name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("signal watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func deliver(signals storage.Provider, name string, logger *slog.Logger, cb SignalCallback) {
	data, err := signals.Read(name)
	if err != nil {
		logger.Warn("signal watcher: read failed", slog.String("file", name), slog.String("error", err.Error()))
		return
	}
	var sig Signal
	if err := json.Unmarshal(data, &sig); err != nil || sig.Key == "" {
		logger.Debug("signal watcher: ignoring foreign file", slog.String("file", name))
		return
	}
	logger.Debug("signal watcher: signal", slog.String("key", sig.Key))
	if cb != nil {
		cb(sig)
	}
}
