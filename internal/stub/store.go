// Package stub is an in-memory fake of the remote inventory service so the
// scan station can be exercised end to end with no infrastructure. It keeps
// the observable semantics of the real authority: pending movements per
// kind, get-or-create item adds with summed totals, stock-checked outbound
// adds, and a face-verification flag gating finalize.
package stub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bekzodm/omborscan/internal/movement"
)

const (
	statusPending   = "PENDING"
	statusVerified  = "VERIFIED"
	statusCancelled = "CANCELLED"
)

var (
	ErrMovementNotFound = errors.New("movement not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrEmptyMovement    = errors.New("movement is empty - add items first")
	ErrNotVerified      = errors.New("face verification missing or expired")
)

// InsufficientStockError rejects an outbound add beyond the current balance.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock (%d available)", e.Available)
}

type Product struct {
	ID       string
	Name     string
	SKU      string
	Barcode  string
	Unit     string
	StockQty int
}

type Item struct {
	ID        string
	ProductID string
	Quantity  int
	UnitPrice float64
}

type Movement struct {
	ID        string
	Kind      movement.Kind
	Status    string
	Note      string
	Items     []*Item
	CreatedAt time.Time
}

type Verification struct {
	Name       string
	Confidence float64
}

// Store holds the fake ledger. One operator session is assumed, matching a
// single dev station.
type Store struct {
	mu        sync.Mutex
	byBarcode map[string]*Product
	byID      map[string]*Product
	movements map[string]*Movement
	verified  *Verification
}

func NewStore() *Store {
	return &Store{
		byBarcode: make(map[string]*Product),
		byID:      make(map[string]*Product),
		movements: make(map[string]*Movement),
	}
}

// Seed loads a small default catalog.
func (s *Store) Seed() {
	for _, p := range []*Product{
		{Name: "Copper wire 2mm", SKU: "CW-002", Barcode: "123", Unit: "m", StockQty: 10},
		{Name: "Screws M4", SKU: "SC-004", Barcode: "456", Unit: "pcs", StockQty: 500},
		{Name: "Paint, white 10L", SKU: "PT-010", Barcode: "789", Unit: "can", StockQty: 5},
	} {
		s.AddProduct(p)
	}
}

func (s *Store) AddProduct(p *Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.byBarcode[p.Barcode] = p
	s.byID[p.ID] = p
}

func (s *Store) ProductByBarcode(code string) (*Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byBarcode[code]

	return p, ok
}

// Pending returns the open movement of the given kind, if any.
func (s *Store) Pending(kind movement.Kind) *Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingLocked(kind)
}

func (s *Store) pendingLocked(kind movement.Kind) *Movement {
	for _, m := range s.movements {
		if m.Kind == kind && m.Status == statusPending {
			return m
		}
	}

	return nil
}

// CreatePending opens a new movement, cancelling any prior pending movement
// of the same kind first.
func (s *Store) CreatePending(kind movement.Kind, note string) *Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev := s.pendingLocked(kind); prev != nil {
		prev.Status = statusCancelled
	}

	m := &Movement{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    statusPending,
		Note:      note,
		CreatedAt: time.Now(),
	}
	s.movements[m.ID] = m

	return m
}

// AddItem adds quantity of a product to a pending movement, summing into an
// existing item for the same product, and returns the item id and the
// authoritative total.
func (s *Store) AddItem(movementID, productID string, quantity int, unitPrice float64) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movements[movementID]
	if !ok || m.Status != statusPending {
		return "", 0, ErrMovementNotFound
	}

	p, ok := s.byID[productID]
	if !ok {
		return "", 0, ErrUnknownProduct
	}

	if m.Kind == movement.KindOut && p.StockQty < quantity {
		return "", 0, &InsufficientStockError{Available: p.StockQty}
	}

	for _, it := range m.Items {
		if it.ProductID == productID {
			it.Quantity += quantity
			it.UnitPrice = unitPrice

			return it.ID, it.Quantity, nil
		}
	}

	it := &Item{
		ID:        uuid.NewString(),
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	m.Items = append(m.Items, it)

	return it.ID, it.Quantity, nil
}

func (s *Store) RemoveItem(movementID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movements[movementID]
	if !ok || m.Status != statusPending {
		return ErrMovementNotFound
	}

	for i, it := range m.Items {
		if it.ID == itemID {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			return nil
		}
	}

	return ErrItemNotFound
}

// Finalize closes a pending movement and applies its items to the stock
// balances. It requires items and a standing face verification; the
// verification is consumed on success.
func (s *Store) Finalize(movementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movements[movementID]
	if !ok || m.Status != statusPending {
		return ErrMovementNotFound
	}

	if len(m.Items) == 0 {
		return ErrEmptyMovement
	}

	if s.verified == nil {
		return ErrNotVerified
	}

	for _, it := range m.Items {
		p := s.byID[it.ProductID]
		if p == nil {
			continue
		}

		if m.Kind == movement.KindIn {
			p.StockQty += it.Quantity
		} else {
			p.StockQty -= it.Quantity
		}
	}

	m.Status = statusVerified
	s.verified = nil

	return nil
}

func (s *Store) Cancel(movementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.movements[movementID]
	if !ok || m.Status != statusPending {
		return ErrMovementNotFound
	}

	m.Status = statusCancelled

	return nil
}

// Discard cancels any pending movement of the kind and opens a fresh one.
func (s *Store) Discard(kind movement.Kind) *Movement {
	return s.CreatePending(kind, "Force restart")
}

func (s *Store) SetVerified(name string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.verified = &Verification{Name: name, Confidence: confidence}
}

func (s *Store) Verified() *Verification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.verified
}

// ProductByID is used by handlers to join item rows with product details.
func (s *Store) ProductByID(id string) (*Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]

	return p, ok
}
