// internal/app/features/bulkupload/registry.go
package bulkupload

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/studypointin/studypoint/internal/batch"
	"go.uber.org/zap"
)

// DefaultIdleTTL is how long an untouched batch survives before the registry
// reclaims it and deletes its spooled files.
const DefaultIdleTTL = 2 * time.Hour

// Registry holds at most one in-progress batch session per admin. Sessions
// live in memory only; a restart loses them, which matches how the admin form
// itself behaves.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*batch.Session
	idleTTL  time.Duration
	log      *zap.Logger
}

func NewRegistry(idleTTL time.Duration, logger *zap.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions: make(map[string]*batch.Session),
		idleTTL:  idleTTL,
		log:      logger,
	}
}

// Get returns the admin's current session, creating one if needed.
func (g *Registry) Get(adminID string) *batch.Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	if s, ok := g.sessions[adminID]; ok {
		return s
	}
	s := batch.NewSession()
	g.sessions[adminID] = s
	g.log.Info("bulk-upload session created",
		zap.String("admin_id", adminID),
		zap.String("session_id", s.ID()))
	return s
}

// Drop removes the admin's session and deletes its spooled files.
func (g *Registry) Drop(adminID string) {
	g.mu.Lock()
	s, ok := g.sessions[adminID]
	delete(g.sessions, adminID)
	g.mu.Unlock()

	if ok {
		removeSpools(s.Reset(), g.log)
	}
}

// Sweep reclaims sessions idle past the TTL. Returns how many were dropped.
func (g *Registry) Sweep() int {
	cutoff := time.Now().Add(-g.idleTTL)

	g.mu.Lock()
	var expired []*batch.Session
	for adminID, s := range g.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(g.sessions, adminID)
		}
	}
	g.mu.Unlock()

	for _, s := range expired {
		removeSpools(s.Reset(), g.log)
		g.log.Info("bulk-upload session expired", zap.String("session_id", s.ID()))
	}
	return len(expired)
}

// Janitor sweeps periodically until ctx is done. Run it from startup as a
// background goroutine.
func (g *Registry) Janitor(ctx context.Context) {
	ticker := time.NewTicker(g.idleTTL / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}

// removeSpools deletes the temp files behind a reclaimed batch.
func removeSpools(paths []string, log *zap.Logger) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn("remove spooled file failed", zap.String("path", p), zap.Error(err))
		}
	}
}
