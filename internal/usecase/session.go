package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/logger"
)

// Session is the state one visitor owns: cart, grid state, product page
// and, for admins, the image staging buffer.
type Session struct {
	ID      string
	Ledger  *CartLedger
	View    *CatalogViewState
	Detail  *ProductDetail
	Images  *ImageBuffer
	Persist *CartPersistence

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type SessionDeps struct {
	Products    repository.ProductRepository
	Snapshots   repository.CartSnapshotRepository
	Readiness   *Readiness
	Notifier    service.Notifier
	Prober      service.ImageProber
	Files       service.FileUploadService
	Optimizer   service.ImageOptimizer
	ReadyWithin time.Duration
}

// SessionRegistry hands out sessions by id, creating and hydrating them
// on first use.
type SessionRegistry struct {
	deps SessionDeps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(deps SessionDeps) *SessionRegistry {
	if deps.Notifier == nil {
		deps.Notifier = service.NopNotifier{}
	}
	return &SessionRegistry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session for id. Unknown or malformed ids get a fresh
// session; the second result reports whether the id changed.
func (r *SessionRegistry) Acquire(ctx context.Context, id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	now := time.Now()

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.touch(now)
		return s, false
	}
	r.mu.Unlock()

	// Hydrate outside the registry lock; a concurrent first request for the
	// same id keeps whichever session was stored first.
	s := r.newSession(ctx, id)
	s.touch(now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		return existing, false
	}
	r.sessions[id] = s
	return s, true
}

func (r *SessionRegistry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistry) newSession(ctx context.Context, id string) *Session {
	persist := NewCartPersistence(r.deps.Snapshots, id)
	ledger := NewCartLedger(persist.Load(ctx))

	notifier := r.deps.Notifier
	ledger.Subscribe(func(lines []entity.CartLine) {
		persist.Save(context.Background(), lines)

		count := 0
		for _, line := range lines {
			count += line.Quantity
		}
		notifier.NotifySession(id, service.ViewEvent{Type: service.EventCartChanged, ItemCount: count})
	})

	logger.Debug("Session started: id=%s cart_lines=%d", id, len(ledger.Lines()))

	return &Session{
		ID:      id,
		Ledger:  ledger,
		View:    NewCatalogViewState(),
		Detail:  NewProductDetail(r.deps.Products, r.deps.Readiness, r.deps.ReadyWithin),
		Images:  NewImageBuffer(r.deps.Prober, r.deps.Files, r.deps.Optimizer),
		Persist: persist,
	}
}

// Sweep drops sessions idle for longer than maxIdle. Their carts stay in
// the snapshot store and are reloaded if the visitor returns.
func (r *SessionRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps every interval until ctx is done.
func (r *SessionRegistry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(maxIdle); removed > 0 {
				logger.Info("Evicted %d idle sessions", removed)
			}
		}
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
