package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartDeletedAccountCleaner purges soft-deleted accounts older than
// retention every interval. Until purged, a deleted username stays
// reserved, so retention must be at least the session max age: otherwise a
// new account could reuse the name while an old cookie for it is alive.
func StartDeletedAccountCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM accounts
                     WHERE deleted_at IS NOT NULL
                       AND deleted_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to purge deleted accounts", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("purged deleted accounts", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
