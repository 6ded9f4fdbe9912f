package pipeline

import (
	"fmt"
	"lifewrapped/internal/providers"
	"lifewrapped/internal/services"
	"os"
	"path/filepath"
	"time"
)

const backupFileName = "lifewrapped-backup.json.zst"

// Backup writes a rolling zstd-compressed snapshot of the database. The
// snapshot is written to a temp file and renamed so a crash mid-write
// never corrupts the previous backup.
type Backup struct {
	export  *services.ExportService
	dir     string
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewBackup(export *services.ExportService, dir string,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *Backup {
	return &Backup{export: export, dir: dir, logger: logger, metrics: metrics}
}

func (b *Backup) Run() error {
	start := time.Now()

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return fmt.Errorf("unable to create backup directory: %w", err)
	}

	tmp := filepath.Join(b.dir, "."+backupFileName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create backup file: %w", err)
	}

	if err := b.export.ExportJSON(f, true); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("unable to write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to finish backup: %w", err)
	}

	target := filepath.Join(b.dir, backupFileName)
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("unable to move backup into place: %w", err)
	}

	b.metrics.ObserveBackupDuration(time.Since(start))
	b.logger.Infof(providers.TypeApp, "Backup written to %s in %s", target, time.Since(start).Round(time.Millisecond))
	return nil
}
