package model

// Product is a catalog entry referenced by orders. Stock is the only field
// this service mutates, and only through the conditional decrement in the
// storage layer.
type Product struct {
	ID        int64
	Name      string
	BasePrice float64
	Stock     int
}
