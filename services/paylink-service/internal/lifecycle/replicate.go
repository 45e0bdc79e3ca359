package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylink-system/services/paylink-service/internal/domain"
)

// replicate clones a primary order for each of the merchant's demo customers
// and sends each clone its own payment link. A demo customer that already
// has a clone of this order (matched by phone number) is skipped, which
// makes resending the primary link idempotent. One customer's failure never
// stops the others; each is logged on its own.
func (m *Manager) replicate(ctx context.Context, primary *domain.Order, items []domain.OrderLineItem) {
	customers, err := m.store.GetDemoCustomers(ctx, primary.MerchantID)
	if err != nil {
		m.log.Error("demo replication aborted: demo customers unavailable",
			"order_id", primary.ID, "error", err)
		return
	}
	if len(customers) == 0 {
		return
	}
	clones, err := m.store.GetOrdersByRefOrderID(ctx, primary.ID)
	if err != nil {
		m.log.Error("demo replication aborted: existing clones unavailable",
			"order_id", primary.ID, "error", err)
		return
	}

	var failures []error
	for _, dc := range customers {
		if cloneExists(clones, dc.Phone) {
			continue
		}
		clone, err := m.createReplica(ctx, primary, items, dc)
		if err != nil {
			m.log.Error("demo clone not created",
				"order_id", primary.ID, "demo_customer_id", dc.ID, "error", err)
			failures = append(failures, fmt.Errorf("demo customer %d: %w", dc.ID, err))
			continue
		}
		// The clone carries RefOrderID, so this dispatch never re-replicates.
		if err := m.SendPaymentRequest(ctx, clone.ID); err != nil {
			m.log.Error("demo clone payment link not sent",
				"order_id", primary.ID, "clone_id", clone.ID, "demo_customer_id", dc.ID, "error", err)
			failures = append(failures, fmt.Errorf("demo customer %d: %w", dc.ID, err))
		}
	}
	if joined := errors.Join(failures...); joined != nil {
		m.log.Warn("demo replication completed with failures",
			"order_id", primary.ID, "failed", len(failures), "total", len(customers), "errors", joined)
	}
}

// cloneExists matches by phone number. This is a heuristic, not a strong
// identity link; two demo customers sharing a phone would collide.
func cloneExists(clones []*domain.Order, phone string) bool {
	for _, c := range clones {
		if c.CustomerPhone == phone {
			return true
		}
	}
	return false
}

// createReplica copies the primary's line-item snapshots as-is; the catalog
// is not consulted again.
func (m *Manager) createReplica(ctx context.Context, primary *domain.Order, items []domain.OrderLineItem, dc domain.DemoCustomer) (*domain.Order, error) {
	refID := primary.ID
	clone := &domain.Order{
		PublicID:      uuid.New(),
		MerchantID:    primary.MerchantID,
		Status:        domain.StatusNew,
		CustomerName:  dc.Name,
		CustomerPhone: dc.Phone,
		RefOrderID:    &refID,
		TipAmount:     decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	if err := m.store.InsertOrder(ctx, clone); err != nil {
		return nil, fmt.Errorf("insert clone: %w", err)
	}
	for _, it := range items {
		snapshot := domain.OrderLineItem{OrderID: clone.ID, Name: it.Name, UnitPrice: it.UnitPrice}
		if err := m.store.InsertOrderLineItem(ctx, &snapshot); err != nil {
			return nil, fmt.Errorf("insert clone line item: %w", err)
		}
	}
	if err := m.appendEvent(ctx, clone, fmt.Sprintf("Order created (from %s)", primary.Number())); err != nil {
		return nil, err
	}
	m.publish("order-created", clone)
	return clone, nil
}
