package interfaces

import (
	"context"
	"time"

	"github.com/exeosec/riskd/internal/model"
)

// AlertStore is the persistence contract for alerts and their score
// breakdowns. The scorer itself never touches the store; the pipeline reads
// the two frequency counts here and passes them in as plain values.
type AlertStore interface {
	// InsertAlert persists a new alert record.
	InsertAlert(ctx context.Context, a *model.Alert) error

	// GetAlert returns one alert by id, or ErrAlertNotFound.
	GetAlert(ctx context.Context, id string) (*model.Alert, error)

	// ListAlerts returns up to limit alerts for a tenant, newest first.
	// limit <= 0 means no limit.
	ListAlerts(ctx context.Context, tenantID string, limit int) ([]*model.Alert, error)

	// CountRecentSameSource counts alerts for the tenant from the same
	// source IP detected at or after since.
	CountRecentSameSource(ctx context.Context, tenantID, sourceIP string, since time.Time) (int, error)

	// CountTenantAlerts counts alerts for the tenant detected at or after since.
	CountTenantAlerts(ctx context.Context, tenantID string, since time.Time) (int, error)

	// ListUnscored returns up to limit alerts that have no attached score.
	ListUnscored(ctx context.Context, limit int) ([]*model.Alert, error)

	// AttachScore stores a breakdown for the alert and updates the alert's
	// score summary columns.
	AttachScore(ctx context.Context, alertID string, b *model.ScoreBreakdown) error

	// GetScore returns the most recent breakdown for the alert, or
	// ErrScoreNotFound.
	GetScore(ctx context.Context, alertID string) (*model.ScoreBreakdown, error)

	// Close releases the underlying database handle.
	Close() error
}
