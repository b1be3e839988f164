package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/application/query/catalog"
)

// CatalogHandler serves the product read model.
//
// Routes:
//   - GET /products
//   - GET /products/{id}
type CatalogHandler struct {
	Query *catalog.Query
}

func NewCatalogHandler(q *catalog.Query) *CatalogHandler {
	return &CatalogHandler{Query: q}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Query == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	if strings.HasSuffix(path, "/products") {
		writeJSON(w, http.StatusOK, map[string]any{"products": h.Query.List(r.Context())})
		return
	}

	id := path[strings.LastIndex(path, "/")+1:]
	p, err := h.Query.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "product not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "catalog lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
