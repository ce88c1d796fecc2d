package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
	"github.com/lunarcms/lunar/pkg/logger"
)

const (
	defaultRetentionDays = 30
	defaultSchedule      = "@daily"
)

// Cleaner permanently removes rows that were soft-deleted longer ago
// than the retention window. Soft delete keeps content recoverable for
// a while; this sweep is what eventually frees unique values (emails,
// slugs, module names) for reuse.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long soft-deleted rows are retained.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(db *gorm.DB, opts ...Option) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: db is required")
	}

	cleaner := &Cleaner{
		db:        db,
		now:       time.Now,
		retention: defaultRetentionDays,
		schedule:  defaultSchedule,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner, nil
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, func() {
		stats, err := c.Purge(context.Background())
		if err != nil {
			c.log.Warn("retention sweep failed", zap.Error(err))
			return
		}
		if total := stats.Total(); total > 0 {
			c.log.Info("retention sweep purged rows", zap.Int64("rows", total))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the sweep immediately. Used in tests and during
// graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	_, err := c.Purge(ctx)
	return err
}

// PurgeStats captures the number of rows removed per table.
type PurgeStats struct {
	Users       int64
	Blogs       int64
	Categories  int64
	SEOEntries  int64
	Submissions int64
	Modules     int64
	Permissions int64
}

// Total sums the purged row counts.
func (s PurgeStats) Total() int64 {
	return s.Users + s.Blogs + s.Categories + s.SEOEntries +
		s.Submissions + s.Modules + s.Permissions
}

// Purge hard-deletes every soft-deleted row older than the retention
// window. Each table is swept independently so one failure does not
// block the rest.
func (c *Cleaner) Purge(ctx context.Context) (PurgeStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cutoff := c.now().AddDate(0, 0, -c.retention)

	var (
		stats PurgeStats
		errs  error
	)

	sweep := func(model any, counter *int64, label string) {
		result := c.db.WithContext(ctx).Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(model)
		if result.Error != nil {
			errs = multierr.Append(errs, fmt.Errorf("maintenance: purge %s: %w", label, result.Error))
			return
		}
		*counter = result.RowsAffected
	}

	sweep(&models.User{}, &stats.Users, "users")
	sweep(&models.Blog{}, &stats.Blogs, "blogs")
	sweep(&models.Category{}, &stats.Categories, "categories")
	sweep(&models.SEOEntry{}, &stats.SEOEntries, "seo entries")
	sweep(&models.FormSubmission{}, &stats.Submissions, "form submissions")
	sweep(&models.PermissionModule{}, &stats.Modules, "permission modules")
	sweep(&models.Permission{}, &stats.Permissions, "permissions")

	return stats, errs
}
