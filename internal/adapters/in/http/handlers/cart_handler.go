package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/application/store"
	cartdom "storefront/internal/domain/cart"
)

// CartHandler serves the cart endpoints backing every cart-consuming view
// (product pages, navbar badge, cart page). All mutation goes through the
// store; responses carry the published snapshot so views render one value.
//
// Routes:
//   - GET    /cart          current snapshot
//   - DELETE /cart          clear
//   - POST   /cart/items    add item (merge-by-lineKey)
//   - PUT    /cart/items    set quantity
//   - DELETE /cart/items    remove line (?lineKey=)
type CartHandler struct {
	Store *store.CartStore
}

func NewCartHandler(s *store.CartStore) *CartHandler {
	return &CartHandler{Store: s}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	isItems := strings.HasSuffix(path, "/cart/items")

	switch {
	case r.Method == http.MethodGet && !isItems:
		writeJSON(w, http.StatusOK, h.Store.Snapshot())

	case r.Method == http.MethodDelete && !isItems:
		h.Store.Clear()
		writeJSON(w, http.StatusOK, h.Store.Snapshot())

	case r.Method == http.MethodPost && isItems:
		h.handleAddItem(w, r)

	case r.Method == http.MethodPut && isItems:
		h.handleSetQuantity(w, r)

	case r.Method == http.MethodDelete && isItems:
		h.handleRemoveItem(w, r)

	default:
		writeErr(w, http.StatusNotFound, "not found")
	}
}

type addItemRequest struct {
	ProductID string            `json:"productId"`
	Name      string            `json:"name"`
	UnitPrice int64             `json:"unitPrice"`
	Quantity  int               `json:"quantity"`
	ImageRef  string            `json:"imageRef"`
	Variant   map[string]string `json:"variant"`
}

// handleAddItem validates at the UI boundary: the store itself never fails
// under valid input.
func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.UnitPrice < 0 {
		writeErr(w, http.StatusBadRequest, "unitPrice must be non-negative")
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		writeErr(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	h.Store.Add(cartdom.CartItem{
		ProductID: req.ProductID,
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
		ImageRef:  strings.TrimSpace(req.ImageRef),
		Variant:   req.Variant,
	}, qty)

	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

type setQuantityRequest struct {
	LineKey  string `json:"lineKey"`
	Quantity int    `json:"quantity"`
}

func (h *CartHandler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.LineKey) == "" {
		writeErr(w, http.StatusBadRequest, "lineKey is required")
		return
	}

	h.Store.SetQuantity(req.LineKey, req.Quantity)
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	lineKey := strings.TrimSpace(r.URL.Query().Get("lineKey"))
	if lineKey == "" {
		writeErr(w, http.StatusBadRequest, "lineKey is required")
		return
	}

	h.Store.Remove(lineKey)
	writeJSON(w, http.StatusOK, h.Store.Snapshot())
}
