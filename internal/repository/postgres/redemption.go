package postgres

import (
	"context"
	"database/sql"

	"promo/internal/domain"
	"promo/internal/repository"
)

// RedemptionStore is the PostgreSQL implementation of repository.RedemptionStore.
// It owns the transaction so the usage-count increment and the ledger append
// commit or roll back together.
type RedemptionStore struct {
	db *sql.DB
}

// NewRedemptionStore creates a new PostgreSQL redemption store.
func NewRedemptionStore(db *sql.DB) *RedemptionStore {
	return &RedemptionStore{db: db}
}

// CommitRedemption increments the coupon's usage count and appends the usage
// record in one transaction. The increment re-checks the total usage limit in
// the same UPDATE, so two concurrent redemptions racing for the last slot
// resolve at the database: the loser matches no row and gets ErrLimitReached.
func (s *RedemptionStore) CommitRedemption(ctx context.Context, couponID string, record *domain.UsageRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE coupons
		SET current_usage_count = current_usage_count + 1, updated_at = NOW()
		WHERE id = $1
		  AND (total_usage_limit IS NULL OR current_usage_count < total_usage_limit)
	`

	result, err := tx.ExecContext(ctx, query, couponID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Either the coupon vanished or the limit was exhausted concurrently.
		var exists bool
		if err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1)`, couponID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			err = repository.ErrNotFound
			return err
		}
		err = repository.ErrLimitReached
		return err
	}

	if err = NewUsageRepositoryWithTx(tx).Append(ctx, record); err != nil {
		return err
	}

	return tx.Commit()
}

// Ensure RedemptionStore implements repository.RedemptionStore.
var _ repository.RedemptionStore = (*RedemptionStore)(nil)
