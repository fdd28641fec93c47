package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"AdPulseAnalytics/internal/config"
	"AdPulseAnalytics/internal/logger"
)

// RetentionConfig controls the nightly sweep of stale failed uploads.
type RetentionConfig struct {
	Schedule      string
	RetentionDays int
	TimeZone      string
}

func NewDefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Schedule:      config.DefaultRetentionSchedule,
		RetentionDays: config.DefaultRetentionDays,
		TimeZone:      config.DefaultTimeZone,
	}
}

// RunRetentionSweeper schedules the purge of failed uploads older than
// the retention window. Row records go first so no orphans survive.
func RunRetentionSweeper(cfg RetentionConfig, pool *pgxpool.Pool) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid retention timezone %q: %w", cfg.TimeZone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := purgeStaleFailedUploads(context.Background(), pool, cfg.RetentionDays); err != nil {
			log.Printf("[ERROR] retention sweep failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.Schedule, err)
	}
	c.Start()
	return c, nil
}

func purgeStaleFailedUploads(ctx context.Context, pool *pgxpool.Pool, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM campaign_rows r
		USING campaign_uploads u
		WHERE r.upload_id = u.upload_id
		  AND u.status = 'failed'
		  AND u.uploaded_at < $1`, cutoff); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx,
		`DELETE FROM campaign_uploads WHERE status = 'failed' AND uploaded_at < $1`, cutoff)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if tag.RowsAffected() > 0 {
		msg := fmt.Sprintf("Retention sweep removed %d stale failed uploads", tag.RowsAffected())
		log.Println("[INFO]", msg)
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(msg)
		}
	}
	return nil
}
