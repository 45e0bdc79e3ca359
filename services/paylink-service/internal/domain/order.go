// paylink-service/internal/domain/order.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is stored as an integer; string labels are defined explicitly
// and are the only external representation.
type OrderStatus int

const (
	StatusNew OrderStatus = iota
	StatusUpdated
	StatusSMSSent
	StatusPaid
)

var statusLabels = map[OrderStatus]string{
	StatusNew:     "New",
	StatusUpdated: "Updated",
	StatusSMSSent: "SMS_Sent",
	StatusPaid:    "Paid",
}

func (s OrderStatus) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

// ParseOrderStatus maps an external status label back to the enum.
func ParseOrderStatus(label string) (OrderStatus, error) {
	for s, l := range statusLabels {
		if l == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", label)
}

type Order struct {
	ID            int64
	PublicID      uuid.UUID
	MerchantID    int64
	Status        OrderStatus
	CustomerName  string
	CustomerPhone string // normalized E.164
	RefOrderID    *int64 // set only on demo clones
	PAN           string // cleaned, unmasked; masking happens at presentation only
	AuthCode      string
	TipAmount     decimal.Decimal
	ExpMonth      int
	ExpYear       int
	CreatedAt     time.Time // UTC
}

// IsLocked reports whether customer and line-item data may no longer change.
func (o *Order) IsLocked() bool {
	return o.Status == StatusSMSSent || o.Status == StatusPaid
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsReplica reports whether this order was created by demo replication.
func (o *Order) IsReplica() bool {
	return o.RefOrderID != nil
}

// Number renders the public order number: the internal id zero-padded to 4 digits.
func (o *Order) Number() string {
	return fmt.Sprintf("%04d", o.ID)
}

// OrderLineItem is a price snapshot taken from the catalog at order
// creation/update time. Snapshots are immutable once written.
type OrderLineItem struct {
	ID        int64
	OrderID   int64
	Name      string
	UnitPrice decimal.Decimal
}

// OrderEvent is an append-only audit record; exactly one per status transition.
type OrderEvent struct {
	ID          int64
	OrderID     int64
	CreatedAt   time.Time // UTC
	Status      OrderStatus
	Description string
}
