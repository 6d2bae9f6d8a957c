package movement

import "context"

//go:generate mockgen -source=gateway.go -destination=gateway_mock.go -package=movement

// Gateway is the remote authority that owns the inventory ledger. Each call
// is independent; the controller never assumes server-side session state
// beyond the movement id it holds.
type Gateway interface {
	LookupProduct(ctx context.Context, code string) (*Product, error)
	CreateMovement(ctx context.Context, kind Kind, note string) (string, error)
	AddItem(ctx context.Context, movementID, productID string, quantity int, unitPrice float64) (*AddReceipt, error)
	RemoveItem(ctx context.Context, movementID, itemID string) error
	Finalize(ctx context.Context, movementID string) (string, error)
	Cancel(ctx context.Context, movementID string) error
	DiscardPending(ctx context.Context, kind Kind) (string, error)
}

// AddReceipt is the server's confirmation of an item add. TotalQuantity is
// the authoritative post-add quantity for the product's line.
type AddReceipt struct {
	ItemID        string
	TotalQuantity int
}
