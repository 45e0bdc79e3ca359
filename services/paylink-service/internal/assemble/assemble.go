// Package assemble builds the exploded-order view: an order merged with its
// line items, event history and merchant context, plus derived totals.
package assemble

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylink-system/services/paylink-service/internal/card"
	"paylink-system/services/paylink-service/internal/domain"
)

type LineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type Event struct {
	At          time.Time `json:"at"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
}

// ExplodedOrder is the caller-facing composite view. The PAN appears masked
// only; the view never exposes the stored number.
type ExplodedOrder struct {
	OrderID       int64           `json:"orderId"`
	PublicID      uuid.UUID       `json:"publicId"`
	OrderNumber   string          `json:"orderNumber"`
	MerchantName  string          `json:"merchantName"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	MaskedPAN     string          `json:"maskedPan,omitempty"`
	AuthCode      string          `json:"authCode,omitempty"`
	TipAmount     decimal.Decimal `json:"tipAmount"`
	SubTotal      decimal.Decimal `json:"orderSubTotal"`
	Total         decimal.Decimal `json:"orderTotal"`
	LineItems     []LineItem      `json:"lineItems"`
	Events        []Event         `json:"events"`
	CreatedAt     time.Time       `json:"createdAt"`

	IsUpdateAvailable          bool `json:"isUpdateAvailable"`
	IsSendPaymentLinkAvailable bool `json:"isSendPaymentLinkAvailable"`
	IsPaymentAvailable         bool `json:"isPaymentAvailable"`
}

// Assemble is pure: it never mutates its inputs and always returns a fresh view.
func Assemble(order domain.Order, items []domain.OrderLineItem, events []domain.OrderEvent, merchant domain.Merchant) ExplodedOrder {
	subTotal := decimal.Zero
	lineItems := make([]LineItem, 0, len(items))
	for _, it := range items {
		subTotal = subTotal.Add(it.UnitPrice)
		lineItems = append(lineItems, LineItem{Name: it.Name, UnitPrice: it.UnitPrice})
	}

	history := make([]Event, 0, len(events))
	for _, ev := range events {
		history = append(history, Event{At: ev.CreatedAt, Status: ev.Status.String(), Description: ev.Description})
	}

	masked := ""
	if order.PAN != "" {
		masked = card.Mask(order.PAN)
	}

	return ExplodedOrder{
		OrderID:       order.ID,
		PublicID:      order.PublicID,
		OrderNumber:   order.Number(),
		MerchantName:  merchant.Name,
		Status:        order.Status.String(),
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		MaskedPAN:     masked,
		AuthCode:      order.AuthCode,
		TipAmount:     order.TipAmount,
		SubTotal:      subTotal,
		Total:         subTotal.Add(order.TipAmount),
		LineItems:     lineItems,
		Events:        history,
		CreatedAt:     order.CreatedAt,

		IsUpdateAvailable:          !order.IsLocked(),
		IsSendPaymentLinkAvailable: !order.IsPaid(),
		IsPaymentAvailable:         !order.IsPaid(),
	}
}

// FromGraph assembles the view from a stored order graph.
func FromGraph(g domain.OrderGraph) ExplodedOrder {
	return Assemble(g.Order, g.LineItems, g.Events, g.Merchant)
}
