package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/session"
	"storefront/internal/application/usecase"
	orderdom "storefront/internal/domain/order"
)

// CheckoutHandler collects the checkout form and submits the order.
// Field validation lives here, at the UI boundary; the usecase and the
// cart assume validated input.
type CheckoutHandler struct {
	Checkout *usecase.CheckoutUsecase
	Session  *session.Session
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, s *session.Session) *CheckoutHandler {
	return &CheckoutHandler{Checkout: uc, Session: s}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Checkout == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var form orderdom.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if msg := validateCheckoutForm(&form); msg != "" {
		writeErr(w, http.StatusBadRequest, msg)
		return
	}

	// A verified bearer identity wins over the server session's identity.
	userID, ok := middleware.CurrentUserUID(r)
	if !ok && h.Session != nil {
		userID = h.Session.Snapshot().UserID
	}

	o, err := h.Checkout.Submit(r.Context(), userID, form)
	if err != nil {
		if errors.Is(err, orderdom.ErrEmptyCart) {
			writeErr(w, http.StatusConflict, "cart is empty")
			return
		}
		writeErr(w, http.StatusInternalServerError, "checkout failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"orderId": o.ID,
		"total":   o.TotalAmount,
		"status":  o.Status,
	})
}

func validateCheckoutForm(f *orderdom.CheckoutForm) string {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.CustomerEmail = strings.TrimSpace(f.CustomerEmail)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Country = strings.TrimSpace(f.Country)
	f.PaymentMethod = strings.TrimSpace(f.PaymentMethod)

	switch {
	case f.CustomerName == "":
		return "customerName is required"
	case f.CustomerEmail == "" || !strings.Contains(f.CustomerEmail, "@"):
		return "customerEmail is invalid"
	case f.Address == "":
		return "shippingAddress is required"
	case f.City == "":
		return "shippingCity is required"
	case f.PostalCode == "":
		return "shippingPostalCode is required"
	case f.Country == "":
		return "shippingCountry is required"
	}

	if f.PaymentMethod == "" {
		f.PaymentMethod = "creditCard"
	}
	return ""
}
