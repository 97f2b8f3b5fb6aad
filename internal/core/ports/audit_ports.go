package ports

import (
	"context"

	"github.com/vncsmyrnk/ballot/internal/core/domain"
)

type AuditRepository interface {
	Save(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, limit, offset int) ([]*domain.AuditEvent, error)
}

// AuditSink accepts audit events without blocking the caller. Failures are
// handled by the sink and never returned.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

type AuditService interface {
	ListEvents(ctx context.Context, page int) ([]*domain.AuditEvent, error)
}
