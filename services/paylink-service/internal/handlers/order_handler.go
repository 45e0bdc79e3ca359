// paylink-service/internal/handlers/order_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"paylink-system/services/paylink-service/internal/domain"
	"paylink-system/services/paylink-service/internal/lifecycle"
)

type OrderHandler struct {
	Lifecycle *lifecycle.Manager
	Log       *slog.Logger
}

type lineItemRequest struct {
	CatalogItemID int64 `json:"catalogItemId"`
}

type orderRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Items         []lineItemRequest `json:"items"`
}

type captureRequest struct {
	CardNumber string           `json:"cardNumber"`
	ExpMonth   int              `json:"expMonth"`
	ExpYear    int              `json:"expYear"`
	Tip        *decimal.Decimal `json:"tipAmount,omitempty"`
}

func (r orderRequest) toInput() lifecycle.OrderInput {
	items := make([]lifecycle.LineItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, lifecycle.LineItemInput{CatalogItemID: it.CatalogItemID})
	}
	return lifecycle.OrderInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Items:         items,
	}
}

func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return
	}

	order, err := h.Lifecycle.Create(r.Context(), req.toInput())
	if err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.Lifecycle.GetExploded(r.Context(), order.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *OrderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return
	}

	if _, err := h.Lifecycle.Update(r.Context(), orderID, req.toInput()); err != nil {
		h.writeError(w, err)
		return
	}
	view, err := h.Lifecycle.GetExploded(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	view, err := h.Lifecycle.GetExploded(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *OrderHandler) HandleSendPaymentRequest(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.Lifecycle.SendPaymentRequest(r.Context(), orderID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *OrderHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Malformed request body", http.StatusBadRequest)
		return
	}

	order, err := h.Lifecycle.Capture(r.Context(), orderID, lifecycle.CaptureInput{
		PAN:      req.CardNumber,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
		Tip:      req.Tip,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"orderNumber": order.Number(),
		"authCode":    order.AuthCode,
		"status":      order.Status.String(),
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeError maps the failure taxonomy to HTTP: validation failures are
// client rejections, integrity failures are 404, everything else is a
// server-side fault.
func (h *OrderHandler) writeError(w http.ResponseWriter, err error) {
	if ve, ok := domain.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"kind":    string(ve.Kind),
			"message": ve.Message,
		})
		return
	}
	if domain.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if errors.Is(err, domain.ErrNotificationFailed) {
		h.Log.Error("notification dispatch failed", "error", err)
		http.Error(w, "Notification dispatch failed", http.StatusBadGateway)
		return
	}
	h.Log.Error("order operation failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
