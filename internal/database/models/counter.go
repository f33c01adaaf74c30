package models

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// AtomicAdd applies a signed delta to a single counter column as one
// server-side increment (col = col + delta), so concurrent writers on the
// same row serialize in the database instead of racing through
// read-modify-write cycles. The in-process mirror, when given, is advanced
// optimistically so later reads in the same transaction see the change
// without a round trip.
//
// This is the only permitted way engine code changes a shared counter;
// assigning counter fields directly is forbidden.
func AtomicAdd(ctx context.Context, db bun.IDB, model any, column string, delta int64, mirror *int64) error {
	_, err := db.NewUpdate().
		Model(model).
		Set("? = ? + ?", bun.Ident(column), bun.Ident(column), delta).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply %s delta: %w", column, err)
	}

	if mirror != nil {
		*mirror += delta
	}

	return nil
}

// AtomicAddReload applies the increment like AtomicAdd but then re-reads
// the authoritative value from storage into the model instead of trusting
// the optimistic mirror. Used when the caller needs certainty, e.g. when
// the fresh value feeds further decisions in the same request.
func AtomicAddReload(ctx context.Context, db bun.IDB, model any, column string, delta int64) error {
	if err := AtomicAdd(ctx, db, model, column, delta, nil); err != nil {
		return err
	}
	return Invalidate(ctx, db, model, column)
}

// Invalidate discards the in-process value of a counter column and
// re-fetches it from storage.
func Invalidate(ctx context.Context, db bun.IDB, model any, column string) error {
	err := db.NewSelect().
		Model(model).
		Column(column).
		WherePK().
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload %s: %w", column, err)
	}
	return nil
}
