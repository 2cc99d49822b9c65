package requirements

import (
	"sync"
	"time"

	"github.com/sgeneral-iua/portal-sg/internal/logging"
	"go.uber.org/zap"
)

type registryKey struct {
	sid       string
	requestID int64
}

type registryEntry struct {
	controller *Controller
	lastUsed   time.Time
}

// Registry keeps the requirement controllers of each session in process.
// Entries are dropped at sign-out, and idle ones by Sweep.
type Registry struct {
	mu      sync.Mutex
	entries map[registryKey]*registryEntry
	logger  *logging.SafeLogger
	now     func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(logger *logging.SafeLogger) *Registry {
	return &Registry{
		entries: make(map[registryKey]*registryEntry),
		logger:  logger.Named("requirements_registry"),
		now:     time.Now,
	}
}

// Get returns the controller for a session's request
func (r *Registry) Get(sid string, requestID int64) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[registryKey{sid, requestID}]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.controller, true
}

// Put stores c for the session, replacing any previous controller
func (r *Registry) Put(sid string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[registryKey{sid, c.RequestID()}] = &registryEntry{controller: c, lastUsed: r.now()}
}

// DropSession removes every controller of a session and returns how many
func (r *Registry) DropSession(sid string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for key := range r.entries {
		if key.sid == sid {
			delete(r.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of controllers held
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops controllers unused for longer than idle. Controllers with an
// operation in flight are kept.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for key, e := range r.entries {
		if e.lastUsed.Before(cutoff) && !e.controller.busy() {
			delete(r.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		r.logger.Debug("swept idle requirement lists",
			zap.Int("dropped", dropped),
			zap.Int("remaining", len(r.entries)))
	}
	return dropped
}

// StartSweeper runs Sweep every interval until stop is closed
func (r *Registry) StartSweeper(interval, idle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(idle)
			case <-stop:
				return
			}
		}
	}()
}
