package repository

import (
	"context"

	"github.com/stitchfab/stitchfab/internal/domain/model"
)

// ProductRepository is the read side of the product catalog plus the single
// stock mutation this service is allowed to perform.
type ProductRepository interface {
	GetByID(ctx context.Context, productID int64) (*model.Product, error)

	// DecrementStock atomically subtracts quantity from the product's stock
	// when enough is available, returning InsufficientStockError otherwise.
	DecrementStock(ctx context.Context, productID int64, quantity int) error
}
