package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/gdg-garage/training-calculator/internal/notifier"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DigestWindow is how far back each digest looks.
const DigestWindow = 24 * time.Hour

type Digest struct {
	db       *gorm.DB
	notifier notifier.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewDigest(db *gorm.DB, n notifier.Notifier, logger *zap.Logger) *Digest {
	return &Digest{db: db, notifier: n, logger: logger, now: time.Now}
}

// Collect counts registrations added in [since, until) per category.
func (d *Digest) Collect(ctx context.Context, since, until time.Time) (notifier.Digest, error) {
	var counts []struct {
		Percentage int
		Count      int
	}
	err := d.db.WithContext(ctx).
		Model(&models.Registration{}).
		Select("percentage, COUNT(*) AS count").
		Where("date_added >= ? AND date_added < ?", since, until).
		Group("percentage").
		Scan(&counts).Error
	if err != nil {
		return notifier.Digest{}, fmt.Errorf("failed to count registrations: %w", err)
	}

	digest := notifier.Digest{Since: since, Until: until, ByCategory: map[string]int{}}
	for _, c := range counts {
		digest.ByCategory[models.Category(c.Percentage)] += c.Count
		digest.Total += c.Count
	}
	return digest, nil
}

// Run sends the digest for the window ending now. Empty windows are skipped.
func (d *Digest) Run() {
	until := d.now()
	since := until.Add(-DigestWindow)

	digest, err := d.Collect(context.Background(), since, until)
	if err != nil {
		d.logger.Error("Digest failed", zap.Error(err))
		return
	}
	if digest.Total == 0 {
		d.logger.Info("No registrations for digest")
		return
	}
	if err := d.notifier.NotifyDigest(digest); err != nil {
		d.logger.Warn("Failed to send digest", zap.Error(err))
		return
	}
	d.logger.Info("Digest sent", zap.Int("registrations", digest.Total))
}

// Schedule registers the digest on a new cron scheduler. The caller starts
// and stops it.
func Schedule(spec string, d *Digest) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, d.Run); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return c, nil
}
