package movement

import (
	"context"
	"fmt"
	"sync"
)

// Controller orchestrates the capture workflow: it sequences movement
// creation, item adds and removals, and the finalize/cancel transitions,
// and it is the only writer of the draft. Methods are safe to call from
// the UI's command goroutines; network calls are made outside the lock and
// their results reconciled under it.
type Controller struct {
	gw   Gateway
	kind Kind

	mu          sync.Mutex
	draft       Draft
	status      Status
	verified    bool
	operator    string
	confidence  float64
	ignoreStock bool

	// epoch invalidates in-flight responses once the movement they belong
	// to has been finalized, cancelled or discarded.
	epoch int
}

func NewController(gw Gateway, kind Kind) *Controller {
	return &Controller{
		gw:     gw,
		kind:   kind,
		draft:  Draft{Kind: kind},
		status: StatusDraft,
	}
}

// Resume seeds the controller with a pending movement from a prior session.
// It reports whether the seed was applied: once the session has a movement
// reference or committed lines of its own, a late resume result is stale and
// is dropped rather than clobbering live state.
func (c *Controller) Resume(movementID, note string, lines []Line) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.draft.MovementID != "" || len(c.draft.Lines) > 0 {
		return false
	}

	c.draft = Draft{
		MovementID: movementID,
		Kind:       c.kind,
		Note:       note,
		Lines:      lines,
		Resumed:    true,
	}

	return true
}

// SetVerified records a successful face verification. Verification is
// terminal for the session: once granted it is never revoked here.
func (c *Controller) SetVerified(operator string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.verified {
		return
	}

	c.verified = true
	c.operator = operator
	c.confidence = confidence
}

func (c *Controller) SetIgnoreStock(ignore bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ignoreStock = ignore
}

// AddOutcome reports the result of an item add. StockWarning is non-blocking
// and is populated even when the add itself later fails, so callers can
// surface it either way.
type AddOutcome struct {
	Line         Line
	StockWarning string
}

// AddItem commits a resolved product against the movement, creating the
// movement first if none exists yet. A non-positive quantity fails locally
// without touching the gateway. For outbound movements a quantity above the
// stock snapshot produces a warning but the request is still sent: the
// gateway, not the client, is the authority on stock sufficiency.
func (c *Controller) AddItem(ctx context.Context, p *Product, quantity int, unitPrice float64) (*AddOutcome, error) {
	if p == nil {
		return nil, &ValidationError{Reason: "no product selected"}
	}

	if quantity <= 0 {
		return nil, &ValidationError{Reason: "quantity must be greater than zero"}
	}

	c.mu.Lock()
	if c.status != StatusDraft {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}

	epoch := c.epoch
	outcome := &AddOutcome{}

	if c.kind == KindOut && !c.ignoreStock && quantity > p.StockQty {
		outcome.StockWarning = fmt.Sprintf("low stock: %d %s available, balance will go negative", p.StockQty, p.Unit)
	}
	c.mu.Unlock()

	ref, err := c.ensureMovement(ctx, epoch)
	if err != nil {
		return outcome, err
	}

	receipt, err := c.gw.AddItem(ctx, ref, p.ID, quantity, unitPrice)
	if err != nil {
		return outcome, fmt.Errorf("adding item: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return outcome, ErrSuperseded
	}

	outcome.Line = c.draft.Apply(p, receipt.ItemID, receipt.TotalQuantity, unitPrice)

	return outcome, nil
}

// ensureMovement lazily creates the movement on first use. If creation
// succeeds but a later step fails, the reference is kept so the next add
// reuses it instead of creating a second movement.
func (c *Controller) ensureMovement(ctx context.Context, epoch int) (string, error) {
	c.mu.Lock()
	ref := c.draft.MovementID
	c.mu.Unlock()

	if ref != "" {
		return ref, nil
	}

	id, err := c.gw.CreateMovement(ctx, c.kind, c.draft.Note)
	if err != nil {
		return "", fmt.Errorf("creating movement: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return "", ErrSuperseded
	}

	if c.draft.MovementID == "" {
		c.draft.MovementID = id
	}

	return c.draft.MovementID, nil
}

// RemoveItem removes a persisted line. Without a movement reference it is a
// no-op; on gateway failure the local list is left untouched.
func (c *Controller) RemoveItem(ctx context.Context, itemID string) error {
	c.mu.Lock()
	ref := c.draft.MovementID
	epoch := c.epoch
	c.mu.Unlock()

	if ref == "" {
		return nil
	}

	if err := c.gw.RemoveItem(ctx, ref, itemID); err != nil {
		return fmt.Errorf("removing item: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return ErrSuperseded
	}

	c.draft.Remove(itemID)

	return nil
}

// Finalize closes the movement against the ledger. The guard (movement
// exists, has items, operator verified) is checked locally first; a failed
// guard never reaches the gateway. On gateway failure the draft stays as it
// was and finalize may be retried.
func (c *Controller) Finalize(ctx context.Context) (string, error) {
	c.mu.Lock()

	var guard *ValidationError

	switch {
	case c.status != StatusDraft:
		c.mu.Unlock()
		return "", ErrSuperseded
	case c.draft.MovementID == "":
		guard = &ValidationError{Reason: "no movement to finalize"}
	case len(c.draft.Lines) == 0:
		guard = &ValidationError{Reason: "movement has no items"}
	case !c.verified:
		guard = &ValidationError{Reason: "face verification required"}
	}

	if guard != nil {
		c.mu.Unlock()
		return "", guard
	}

	ref := c.draft.MovementID
	epoch := c.epoch
	c.mu.Unlock()

	msg, err := c.gw.Finalize(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("finalizing movement: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return "", ErrSuperseded
	}

	c.status = StatusFinalized
	c.epoch++

	return msg, nil
}

// Cancel voids the movement. ErrNothingToCancel signals the caller to treat
// it as a local reset instead of a gateway call.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	ref := c.draft.MovementID
	epoch := c.epoch
	c.mu.Unlock()

	if ref == "" {
		return ErrNothingToCancel
	}

	if err := c.gw.Cancel(ctx, ref); err != nil {
		return fmt.Errorf("cancelling movement: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return ErrSuperseded
	}

	c.status = StatusCancelled
	c.epoch++

	return nil
}

// DiscardRestart abandons a movement resumed from a prior session and forces
// a brand-new one. On success the draft is replaced unconditionally and any
// in-flight response for the old movement is invalidated.
func (c *Controller) DiscardRestart(ctx context.Context) error {
	c.mu.Lock()
	resumed := c.draft.Resumed
	c.mu.Unlock()

	if !resumed {
		return &ValidationError{Reason: "nothing pending to discard"}
	}

	id, err := c.gw.DiscardPending(ctx, c.kind)
	if err != nil {
		return fmt.Errorf("discarding pending movement: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.draft = Draft{MovementID: id, Kind: c.kind}
	c.status = StatusDraft

	return nil
}

// Snapshot is a read-only view of the workflow state for rendering.
type Snapshot struct {
	MovementID      string
	Kind            Kind
	Status          Status
	Lines           []Line
	Resumed         bool
	Verified        bool
	Operator        string
	Confidence      float64
	IgnoreStock     bool
	FinalizeEnabled bool
}

// Snapshot copies the current state. FinalizeEnabled is recomputed here as a
// pure function of (movement ref, item count, verified); it is never toggled
// independently.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.draft.Lines))
	copy(lines, c.draft.Lines)

	return Snapshot{
		MovementID:  c.draft.MovementID,
		Kind:        c.kind,
		Status:      c.status,
		Lines:       lines,
		Resumed:     c.draft.Resumed,
		Verified:    c.verified,
		Operator:    c.operator,
		Confidence:  c.confidence,
		IgnoreStock: c.ignoreStock,
		FinalizeEnabled: c.status == StatusDraft &&
			c.draft.MovementID != "" &&
			len(c.draft.Lines) > 0 &&
			c.verified,
	}
}
