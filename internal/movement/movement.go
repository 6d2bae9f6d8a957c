package movement

import "errors"

// Kind represents the direction of a movement.
type Kind string

const (
	KindIn  Kind = "IN"
	KindOut Kind = "OUT"
)

// Status represents the lifecycle state of a movement.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
)

// Product is the result of a barcode lookup. It is ephemeral: it lives
// between a scan and the commit (or discard) of the staged item.
type Product struct {
	ID       string
	Name     string
	SKU      string
	Unit     string
	StockQty int
}

// Line is one product entry within a movement. ItemID is issued by the
// server once the line is persisted; StockQty is the stock snapshot at the
// time of the add and is display-only.
type Line struct {
	ItemID    string
	ProductID string
	Name      string
	SKU       string
	Quantity  int
	Unit      string
	UnitPrice float64
	StockQty  int
}

// ErrProductNotFound is returned by lookups when no product matches the
// scanned code. It is a normal negative outcome, not a transport fault.
var ErrProductNotFound = errors.New("product not found")

// ErrNothingToCancel is returned by Cancel when no movement exists yet.
var ErrNothingToCancel = errors.New("no movement to cancel")

// ErrSuperseded is returned when a server response arrives after the
// movement it belongs to was finalized, cancelled or discarded. Callers
// should drop it silently.
var ErrSuperseded = errors.New("movement superseded")

// ValidationError is a local precondition failure. It never involves the
// gateway and is immediately correctable by the operator.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
