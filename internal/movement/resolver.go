package movement

import (
	"context"
	"fmt"
	"strings"
)

// ProductLookup resolves a scanned code to a product.
type ProductLookup interface {
	LookupProduct(ctx context.Context, code string) (*Product, error)
}

// Resolver turns raw scanner input into a resolved product. Whether the
// resolved product is committed immediately or staged behind a quantity
// prompt is the caller's decision (turbo mode).
type Resolver struct {
	lookup ProductLookup
}

func NewResolver(lookup ProductLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve trims and looks up a scanned code. Empty input yields (nil, nil):
// a blank scan is a no-op, not an error. A missing product surfaces as
// ErrProductNotFound; transport faults keep their own identity and are never
// folded into not-found.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	p, err := r.lookup.LookupProduct(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", code, err)
	}

	return p, nil
}
