package ports

import "context"

type ReconcileReport struct {
	Scanned    int
	Flagged    int
	Backfilled int
}

type ReconcileService interface {
	Reconcile(ctx context.Context, backfill bool) (ReconcileReport, error)
}
