package repository

import (
	"context"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create persists the order and its item snapshots atomically and
	// returns the stored record with identifiers and timestamps filled in.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)

	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)

	// ApplyStatusUpdate performs the whole transition as one unit of work:
	// it validates the transition against the current row, runs the
	// check-then-deduct sequence when the target status confirms the order
	// and stock was not deducted yet, and applies the requested values.
	// The order row is locked for the duration so concurrent transitions
	// for the same order serialize.
	ApplyStatusUpdate(ctx context.Context, orderID int64, update model.StatusUpdate) (*model.Order, error)

	// CountByUser returns how many orders the user has placed; used as the
	// order-frequency signal for risk scoring.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// SelectPendingOnlinePayments returns confirmed-method orders still
	// awaiting a payment outcome, oldest first.
	SelectPendingOnlinePayments(ctx context.Context, limit int) ([]model.Order, error)
}
