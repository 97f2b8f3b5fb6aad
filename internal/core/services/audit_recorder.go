package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/ballot/internal/core/domain"
	"github.com/vncsmyrnk/ballot/internal/core/ports"
)

const (
	DefaultAuditBufferSize   = 256
	defaultAuditWriteTimeout = 5 * time.Second
)

// AuditRecorder persists audit events from a single background worker.
// Record never blocks: when the queue is full the event is dropped.
type AuditRecorder struct {
	repo    ports.AuditRepository
	logger  zerolog.Logger
	metrics *Metrics
	now     func() time.Time

	events    chan domain.AuditEvent
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewAuditRecorder(repo ports.AuditRepository, logger zerolog.Logger, metrics *Metrics, bufferSize int) *AuditRecorder {
	if bufferSize <= 0 {
		bufferSize = DefaultAuditBufferSize
	}
	r := &AuditRecorder{
		repo:    repo,
		logger:  logger.With().Str("component", "audit").Logger(),
		metrics: metrics,
		now:     time.Now,
		events:  make(chan domain.AuditEvent, bufferSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *AuditRecorder) Record(_ context.Context, event domain.AuditEvent) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn().Str("action", event.Action).Msg("audit recorder closed, dropping event")
		r.metrics.incAuditDropped()
		return
	}

	select {
	case r.events <- event:
	default:
		r.logger.Warn().Str("action", event.Action).Msg("audit queue full, dropping event")
		r.metrics.incAuditDropped()
	}
}

func (r *AuditRecorder) run() {
	defer close(r.done)
	for event := range r.events {
		r.persist(event)
	}
}

func (r *AuditRecorder) persist(event domain.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultAuditWriteTimeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("action", event.Action).Msg("audit repository panicked")
			r.metrics.incAuditFailed()
		}
	}()

	if err := r.repo.Save(ctx, &event); err != nil {
		r.logger.Error().Err(err).
			Str("action", event.Action).
			Str("resource_type", event.ResourceType).
			Msg("failed to persist audit event")
		r.metrics.incAuditFailed()
	}
}

// Close stops accepting events and waits until queued events are written
// or ctx is done.
func (r *AuditRecorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type auditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) ports.AuditService {
	return &auditService{repo: repo}
}

const auditPageSize = 50

func (s *auditService) ListEvents(ctx context.Context, page int) ([]*domain.AuditEvent, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, auditPageSize, (page-1)*auditPageSize)
}
