// workers/score_audit_worker.go
package workers

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"waitlist-rank-system/metrics"
	"waitlist-rank-system/models"
	"waitlist-rank-system/services"
)

const auditBatchSize = 500

// ScoreAuditWorker periodically checks that every stored total score matches its point
// sources and repairs the ones that drifted, e.g. after a manual database edit.
type ScoreAuditWorker struct {
	db       *gorm.DB
	interval time.Duration
	engine   services.ScoreEngine
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewScoreAuditWorker(db *gorm.DB, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *ScoreAuditWorker {
	return &ScoreAuditWorker{
		db:       db,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Start runs the audit loop until ctx is cancelled. A zero interval disables the worker.
func (w *ScoreAuditWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("Score audit worker disabled")
		return
	}
	w.logger.Info("Starting score audit worker", "interval", w.interval)
	go w.run(ctx)
}

func (w *ScoreAuditWorker) run(ctx context.Context) {
	if _, err := w.Audit(ctx); err != nil {
		w.logger.Warn("Initial score audit failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.Audit(ctx); err != nil {
				w.logger.Error("Score audit failed", "err", err)
			}
		case <-ctx.Done():
			w.logger.Info("Score audit worker stopped")
			return
		}
	}
}

// Audit scans all entrants in primary key order and returns how many totals were repaired.
func (w *ScoreAuditWorker) Audit(ctx context.Context) (int, error) {
	repaired := 0
	var batch []models.Entrant
	err := w.db.WithContext(ctx).
		FindInBatches(&batch, auditBatchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				e := &batch[i]
				stored := e.TotalScore
				if w.engine.Recompute(e) == stored {
					continue
				}
				// Only repair the row as it was read; a score mutation committed since then
				// already wrote a consistent total.
				res := w.db.WithContext(ctx).Model(&models.Entrant{}).
					Where("id = ? AND total_score = ?", e.ID, stored).
					UpdateColumn("total_score", e.TotalScore)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					continue
				}
				repaired++
				w.logger.Warn("Repaired drifted total score",
					"entrant_id", e.ID, "stored", stored, "computed", e.TotalScore)
			}
			return nil
		}).Error
	if err != nil {
		return repaired, err
	}

	w.metrics.AddScoreRepairs(repaired)
	if repaired > 0 {
		w.logger.Info("Score audit finished", "repaired", repaired)
	}
	return repaired, nil
}
