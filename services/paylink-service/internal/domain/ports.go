package domain

import "context"

// OrderGraph is an order joined with its line items, event history and
// owning merchant.
type OrderGraph struct {
	Order     Order
	LineItems []OrderLineItem
	Events    []OrderEvent
	Merchant  Merchant
}

type Store interface {
	GetMerchant(ctx context.Context, id int64) (*Merchant, error)
	GetActiveMerchant(ctx context.Context) (*Merchant, error)
	GetCatalogItem(ctx context.Context, id int64) (*CatalogItem, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderExploded(ctx context.Context, id int64) (*OrderGraph, error)
	InsertOrder(ctx context.Context, order *Order) error
	UpdateOrder(ctx context.Context, order *Order) error
	InsertOrderEvent(ctx context.Context, event *OrderEvent) error
	GetOrderLineItems(ctx context.Context, orderID int64) ([]OrderLineItem, error)
	DeleteOrderLineItems(ctx context.Context, orderID int64) error
	InsertOrderLineItem(ctx context.Context, item *OrderLineItem) error
	GetOrdersByRefOrderID(ctx context.Context, orderID int64) ([]*Order, error)
	GetDemoCustomers(ctx context.Context, merchantID int64) ([]DemoCustomer, error)
}

// Notifier dispatches the payment-request message. The call blocks; a
// transport failure fails the whole operation.
type Notifier interface {
	SendMessage(ctx context.Context, from, to, body string) (messageID string, err error)
}

// PhoneNormalizer is the region-aware phone formatting collaborator.
type PhoneNormalizer interface {
	Normalize(raw, region string) (ok bool, national, e164 string)
}
