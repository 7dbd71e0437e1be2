package repository

import "context"

// CartRepository exposes the only cart operation the order core needs.
type CartRepository interface {
	Clear(ctx context.Context, userID int64) error
}
