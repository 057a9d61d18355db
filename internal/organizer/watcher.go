package organizer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/tab_warden/internal/types"
	"github.com/dgnsrekt/tab_warden/internal/urlnorm"
)

// HostEvents is the event surface the watcher subscribes to.
type HostEvents interface {
	OnTabCreated(fn func(types.Tab))
	OnTabRemoved(fn func(int))
}

// Watcher reacts to tab lifecycle events: closed tabs leave their group
// immediately, and new tabs arm a debounce timer that triggers the
// configured automatic actions. Bursts of tab opens (restored sessions,
// middle-click sprees) collapse into one pass.
type Watcher struct {
	svc      *Service
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher builds a watcher around the service.
func NewWatcher(svc *Service, debounce time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{svc: svc, debounce: debounce, ctx: ctx, cancel: cancel}
}

// Bind subscribes to the host's tab events. Call once.
func (w *Watcher) Bind(events HostEvents) {
	events.OnTabRemoved(func(id int) {
		w.svc.Registry().DropTab(id)
	})
	events.OnTabCreated(func(tab types.Tab) {
		if urlnorm.IsInternal(tab.URL) {
			return
		}
		settings := w.svc.Settings()
		if !settings.AutoDedupe && !settings.AutoGroup {
			return
		}
		w.arm()
	})
}

// arm starts or extends the debounce window.
func (w *Watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.run)
}

func (w *Watcher) run() {
	ctx, cancel := context.WithTimeout(w.ctx, time.Minute)
	defer cancel()

	settings := w.svc.Settings()
	if settings.AutoDedupe {
		report, err := w.svc.CloseDuplicates(ctx)
		if err != nil {
			slog.Warn("auto dedupe failed", "error", err)
		} else if report.Removed > 0 {
			slog.Info("auto dedupe closed duplicates", "removed", report.Removed)
		}
	}
	if settings.AutoGroup {
		report, err := w.svc.GroupByDomain(ctx)
		if err != nil {
			slog.Warn("auto group failed", "error", err)
		} else if len(report.Created) > 0 {
			slog.Info("auto group created groups", "created", len(report.Created))
		}
	}
}

// Stop cancels pending and future automatic passes.
func (w *Watcher) Stop() {
	w.cancel()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
