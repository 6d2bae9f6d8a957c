package stub

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bekzodm/omborscan/internal/movement"
)

// devConfidence is the canned match confidence: the stub accepts any
// non-empty frame as the configured operator.
const devConfidence = 0.93

type Handler struct {
	store    *Store
	operator string
}

func NewHandler(store *Store, operator string) *Handler {
	return &Handler{store: store, operator: operator}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/products/by-barcode", h.lookupProduct)
	r.Get("/face/status", h.faceStatus)
	r.Post("/face/verify", h.faceVerify)
	r.Get("/movements/pending", h.pendingMovement)
	r.Post("/movements", h.createMovement)
	r.Post("/movements/discard", h.discardMovement)
	r.Post("/movements/{id}/items", h.addItem)
	r.Post("/movements/{id}/items/{itemID}/remove", h.removeItem)
	r.Post("/movements/{id}/finalize", h.finalizeMovement)
	r.Post("/movements/{id}/cancel", h.cancelMovement)
}

func (h *Handler) lookupProduct(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("q"))
	if code == "" {
		writeJSON(w, http.StatusOK, map[string]any{"found": false, "error": "no barcode given"})
		return
	}

	p, ok := h.store.ProductByBarcode(code)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"found": false, "error": "unknown barcode: " + code})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"found":   true,
		"product": productJSON(p),
	})
}

func (h *Handler) faceVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON"})
		return
	}

	raw := req.Image
	if idx := strings.Index(raw, ","); idx >= 0 {
		raw = raw[idx+1:]
	}

	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(img) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "no image data"})
		return
	}

	h.store.SetVerified(h.operator, devConfidence)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       h.operator,
		"confidence": devConfidence,
	})
}

func (h *Handler) faceStatus(w http.ResponseWriter, _ *http.Request) {
	v := h.store.Verified()
	if v == nil {
		writeJSON(w, http.StatusOK, map[string]any{"verified": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verified":   true,
		"name":       v.Name,
		"confidence": v.Confidence,
	})
}

func (h *Handler) pendingMovement(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(r.URL.Query().Get("type"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"found": false, "error": "invalid movement type"})
		return
	}

	m := h.store.Pending(kind)
	if m == nil {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}

	items := make([]map[string]any, 0, len(m.Items))

	for _, it := range m.Items {
		row := map[string]any{
			"id":         it.ID,
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
		}

		if p, ok := h.store.ProductByID(it.ProductID); ok {
			row["name"] = p.Name
			row["sku"] = p.SKU
			row["unit"] = p.Unit
			row["stock_qty"] = p.StockQty
		}

		items = append(items, row)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"found": true,
		"movement": map[string]any{
			"id":    m.ID,
			"note":  m.Note,
			"items": items,
		},
	})
}

func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovementType string `json:"movement_type"`
		Note         string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON"})
		return
	}

	kind, ok := parseKind(req.MovementType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid movement type"})
		return
	}

	m := h.store.CreatePending(kind, req.Note)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "movement_id": m.ID})
}

func (h *Handler) discardMovement(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MovementType string `json:"movement_type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON"})
		return
	}

	kind, ok := parseKind(req.MovementType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid movement type"})
		return
	}

	m := h.store.Discard(kind)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "movement_id": m.ID})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string  `json:"product_id"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON"})
		return
	}

	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "quantity must be greater than zero"})
		return
	}

	itemID, total, err := h.store.AddItem(chi.URLParam(r, "id"), req.ProductID, req.Quantity, req.UnitPrice)
	if err != nil {
		writeJSON(w, errStatus(err), map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"item_id":        itemID,
		"total_quantity": total,
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	err := h.store.RemoveItem(chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, errStatus(err), map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) finalizeMovement(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Finalize(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, errStatus(err), map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "movement completed"})
}

func (h *Handler) cancelMovement(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Cancel(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, errStatus(err), map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func productJSON(p *Product) map[string]any {
	return map[string]any{
		"id":        p.ID,
		"name":      p.Name,
		"sku":       p.SKU,
		"stock_qty": p.StockQty,
		"unit":      p.Unit,
	}
}

func parseKind(s string) (movement.Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(movement.KindIn):
		return movement.KindIn, true
	case string(movement.KindOut):
		return movement.KindOut, true
	}

	return "", false
}

func errStatus(err error) int {
	var stock *InsufficientStockError

	switch {
	case errors.Is(err, ErrMovementNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, ErrNotVerified):
		return http.StatusForbidden
	case errors.As(err, &stock), errors.Is(err, ErrEmptyMovement):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
