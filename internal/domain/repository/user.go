package repository

import (
	"context"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// UserRepository describes persistence operations with accounts.
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.User, error)
	GetByLogin(ctx context.Context, login string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// RecordLoginOrigin appends the origin hash to the account's login
	// history. Duplicate origins refresh their recency instead of growing
	// the history.
	RecordLoginOrigin(ctx context.Context, userID int64, originHash string) error

	// LoginOrigins returns the most recent origin hashes for the account,
	// newest first, bounded by limit.
	LoginOrigins(ctx context.Context, userID int64, limit int) ([]string, error)
}
