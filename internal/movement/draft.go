package movement

// Draft is the pending movement and its line items, the single local
// source of truth the UI renders from. It is owned by the Controller;
// nothing else mutates it.
type Draft struct {
	MovementID string
	Kind       Kind
	Note       string
	Lines      []Line
	Resumed    bool
}

// Apply reconciles a successful add against the local list. Lines are keyed
// by product: an existing line for the same product takes the server-returned
// total quantity, otherwise a new line is appended under the server-issued
// item id. Totals are never summed locally.
func (d *Draft) Apply(p *Product, itemID string, totalQuantity int, unitPrice float64) Line {
	for i := range d.Lines {
		if d.Lines[i].ProductID == p.ID {
			d.Lines[i].Quantity = totalQuantity
			d.Lines[i].UnitPrice = unitPrice
			return d.Lines[i]
		}
	}

	line := Line{
		ItemID:    itemID,
		ProductID: p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Quantity:  totalQuantity,
		Unit:      p.Unit,
		UnitPrice: unitPrice,
		StockQty:  p.StockQty,
	}
	d.Lines = append(d.Lines, line)

	return line
}

// Remove drops the line with the given item id. It reports whether a line
// was actually removed.
func (d *Draft) Remove(itemID string) bool {
	for i := range d.Lines {
		if d.Lines[i].ItemID == itemID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return true
		}
	}

	return false
}
