package pipeline

import (
	"lifewrapped/internal/providers"
	"lifewrapped/internal/storage"
	"lifewrapped/internal/structures"
	"time"

	"github.com/roylee0704/gron"
)

// Scheduler runs the periodic jobs: backup snapshots and the sessions
// gauge refresh.
type Scheduler struct {
	cron   *gron.Cron
	logger providers.Logger
}

func NewScheduler(conf *structures.Config, backup *Backup, store *storage.Store,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *Scheduler {
	c := gron.New()

	if conf.Backup.Enabled {
		interval := conf.Backup.Interval
		if interval < time.Minute {
			interval = time.Hour
		}
		c.AddFunc(gron.Every(interval), func() {
			if err := backup.Run(); err != nil {
				logger.Errorf(providers.TypeApp, "Scheduled backup failed: %s", err)
			}
		})
	}

	c.AddFunc(gron.Every(1*time.Minute), func() {
		counts, err := store.Counts()
		if err != nil {
			logger.Warnf(providers.TypeApp, "Unable to refresh session gauge: %s", err)
			return
		}
		metrics.SetSessionsTotal(counts.Sessions)
	})

	return &Scheduler{cron: c, logger: logger}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
