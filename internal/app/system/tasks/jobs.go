// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/bemyforce/bemyforce/internal/app/system/auditlog"
	"github.com/bemyforce/bemyforce/internal/app/system/metrics"
	"go.uber.org/zap"
)

// NeedExpiryInterval is how often past-dated needs are swept.
const NeedExpiryInterval = 1 * time.Hour

// NeedExpirer is the slice of the needs store the sweep uses.
type NeedExpirer interface {
	ExpirePast(ctx context.Context, now time.Time) (int64, error)
}

// NeedExpiryJob creates a job that marks approved, still-searching needs
// whose event date has passed as expired. Failures are logged and
// swallowed so the job keeps its schedule.
func NeedExpiryJob(needs NeedExpirer, m *metrics.Metrics, audit *auditlog.Logger, logger *zap.Logger, interval time.Duration) Job {
	if interval <= 0 {
		interval = NeedExpiryInterval
	}
	const name = "need-expiry"
	return Job{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context) error {
			count, err := needs.ExpirePast(ctx, time.Now().UTC())
			m.JobRun(name, err)
			if err != nil {
				logger.Error("error in expired needs cron job", zap.Error(err))
				return nil
			}
			m.Expired(count)
			if count > 0 {
				logger.Info("marked needs as expired", zap.Int64("count", count))
				audit.NeedsExpired(ctx, count)
			}
			return nil
		},
	}
}
