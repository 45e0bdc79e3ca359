// Package lifecycle implements the order state machine:
// New -> Updated -> SMS_Sent -> Paid, with re-entrant Updated and SMS_Sent
// edges. Every transition appends exactly one audit event.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylink-system/services/paylink-service/internal/assemble"
	"paylink-system/services/paylink-service/internal/card"
	"paylink-system/services/paylink-service/internal/domain"
	"paylink-system/services/paylink-service/internal/payment"
)

// EventPublisher receives fire-and-forget audit notifications. The async
// Kafka producer satisfies it.
type EventPublisher interface {
	Publish(topic string, message map[string]interface{})
}

// Config is passed explicitly at construction; the manager keeps no global state.
type Config struct {
	LinkBaseURL    string
	SMSFrom        string
	DefaultRegion  string
	DefaultTip     decimal.Decimal
	CurrencySymbol string
}

type Manager struct {
	store    domain.Store
	notifier domain.Notifier
	phones   domain.PhoneNormalizer
	events   EventPublisher
	cfg      Config
	log      *slog.Logger
}

func NewManager(store domain.Store, notifier domain.Notifier, phones domain.PhoneNormalizer, events EventPublisher, cfg Config, log *slog.Logger) *Manager {
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = "$"
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		phones:   phones,
		events:   events,
		cfg:      cfg,
		log:      log,
	}
}

type LineItemInput struct {
	CatalogItemID int64
}

type OrderInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []LineItemInput
}

type CaptureInput = payment.CaptureInput

// GetExploded returns the composite view of an order.
func (m *Manager) GetExploded(ctx context.Context, orderID int64) (assemble.ExplodedOrder, error) {
	graph, err := m.store.GetOrderExploded(ctx, orderID)
	if err != nil {
		return assemble.ExplodedOrder{}, err
	}
	return assemble.FromGraph(*graph), nil
}

// Create builds a new order for the active merchant. Creation is always a
// legal transition; only the inputs themselves are validated.
func (m *Manager) Create(ctx context.Context, in OrderInput) (*domain.Order, error) {
	merchant, err := m.store.GetActiveMerchant(ctx)
	if err != nil {
		return nil, err
	}

	phone, err := m.normalizePhone(in.CustomerPhone)
	if err != nil {
		return nil, err
	}

	snapshots, err := m.snapshotCatalogItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		PublicID:      uuid.New(),
		MerchantID:    merchant.ID,
		Status:        domain.StatusNew,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: phone,
		TipAmount:     decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
	if err := m.store.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if err := m.writeSnapshots(ctx, order.ID, snapshots); err != nil {
		return nil, err
	}
	if err := m.appendEvent(ctx, order, "Order created"); err != nil {
		return nil, err
	}
	m.publish("order-created", order)
	return order, nil
}

// Update replaces the order's customer fields and full line-item set. Legal
// only while the order is unlocked (status not SMS_Sent or Paid).
func (m *Manager) Update(ctx context.Context, orderID int64, in OrderInput) (*domain.Order, error) {
	order, err := m.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsLocked() {
		return nil, domain.Invalid(domain.FailOrderLocked,
			"order %s has status %s and can no longer be updated", order.Number(), order.Status)
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, domain.Invalid(domain.FailInvalidOrderFields,
			"customer name and phone are required")
	}

	phone, err := m.normalizePhone(in.CustomerPhone)
	if err != nil {
		return nil, err
	}
	snapshots, err := m.snapshotCatalogItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	// Line items are not diffed: the full set is replaced.
	if err := m.store.DeleteOrderLineItems(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("replace line items: %w", err)
	}
	if err := m.writeSnapshots(ctx, order.ID, snapshots); err != nil {
		return nil, err
	}

	order.CustomerName = strings.TrimSpace(in.CustomerName)
	order.CustomerPhone = phone
	order.Status = domain.StatusUpdated
	if err := m.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if err := m.appendEvent(ctx, order, "Order updated"); err != nil {
		return nil, err
	}
	m.publish("order-updated", order)
	return order, nil
}

// SendPaymentRequest renders and dispatches the payment-link message, then
// advances the order to SMS_Sent. A dispatch failure is fatal: the status
// does not advance, no event is recorded and replication is not attempted.
// For primary orders a successful dispatch triggers demo replication.
func (m *Manager) SendPaymentRequest(ctx context.Context, orderID int64) error {
	graph, err := m.store.GetOrderExploded(ctx, orderID)
	if err != nil {
		return err
	}
	order := graph.Order
	if order.IsPaid() {
		return domain.Invalid(domain.FailAlreadyPaid,
			"order %s is already paid", order.Number())
	}
	if len(graph.LineItems) == 0 {
		return domain.Invalid(domain.FailEmptyOrder,
			"order %s has no line items", order.Number())
	}

	view := assemble.FromGraph(*graph)
	body := fmt.Sprintf("%s order %s: total %s%s. Pay here: %s/pay/%s",
		graph.Merchant.Name, view.OrderNumber,
		m.cfg.CurrencySymbol, view.Total.StringFixed(2),
		strings.TrimRight(m.cfg.LinkBaseURL, "/"), order.PublicID)

	// The dispatch blocks; no store transaction is held across it.
	messageID, err := m.notifier.SendMessage(ctx, m.cfg.SMSFrom, order.CustomerPhone, body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	order.Status = domain.StatusSMSSent
	if err := m.store.UpdateOrder(ctx, &order); err != nil {
		// The message left the building but the status did not stick.
		m.log.Error("payment link dispatched but order status not persisted",
			"order_id", order.ID, "message_id", messageID, "error", err)
		return fmt.Errorf("update order after dispatch: %w", err)
	}
	if err := m.appendEvent(ctx, &order, fmt.Sprintf("Payment link sent (message %s)", messageID)); err != nil {
		return err
	}
	m.publish("payment-link-sent", &order)

	if !order.IsReplica() {
		m.replicate(ctx, &order, graph.LineItems)
	}
	return nil
}

// Capture validates the payment instrument and, only after every rule
// passes, applies the terminal mutation: cleaned PAN, expiration, approval
// code and tip, status Paid.
func (m *Manager) Capture(ctx context.Context, orderID int64, in CaptureInput) (*domain.Order, error) {
	order, err := m.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	merchant, err := m.store.GetMerchant(ctx, order.MerchantID)
	if err != nil {
		return nil, err
	}

	if err := payment.Validate(time.Now().UTC(), in, merchant.SupportsTips, order.AuthCode); err != nil {
		return nil, err
	}

	code, err := card.GenerateAuthCode()
	if err != nil {
		return nil, err
	}

	tip := m.cfg.DefaultTip
	if in.Tip != nil {
		tip = *in.Tip
	}

	order.PAN = card.Clean(in.PAN)
	order.ExpMonth = in.ExpMonth
	order.ExpYear = in.ExpYear
	order.AuthCode = code
	order.TipAmount = tip
	order.Status = domain.StatusPaid
	if err := m.store.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	if err := m.appendEvent(ctx, order, fmt.Sprintf("Payment captured (approval code %s)", code)); err != nil {
		return nil, err
	}
	m.publish("order-paid", order)
	return order, nil
}

func (m *Manager) normalizePhone(raw string) (string, error) {
	ok, _, e164 := m.phones.Normalize(raw, m.cfg.DefaultRegion)
	if !ok {
		return "", domain.Invalid(domain.FailInvalidPhoneNumber,
			"phone number %q is not valid for region %s", raw, m.cfg.DefaultRegion)
	}
	return e164, nil
}

// snapshotCatalogItems resolves catalog references into price snapshots.
// Catalog price changes never reach existing orders.
func (m *Manager) snapshotCatalogItems(ctx context.Context, items []LineItemInput) ([]domain.OrderLineItem, error) {
	snapshots := make([]domain.OrderLineItem, 0, len(items))
	for _, it := range items {
		catalogItem, err := m.store.GetCatalogItem(ctx, it.CatalogItemID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.Invalid(domain.FailUnknownCatalogItem,
					"catalog item %d does not exist", it.CatalogItemID)
			}
			return nil, err
		}
		snapshots = append(snapshots, domain.OrderLineItem{
			Name:      catalogItem.Name,
			UnitPrice: catalogItem.UnitPrice,
		})
	}
	return snapshots, nil
}

func (m *Manager) writeSnapshots(ctx context.Context, orderID int64, snapshots []domain.OrderLineItem) error {
	for i := range snapshots {
		snapshots[i].OrderID = orderID
		if err := m.store.InsertOrderLineItem(ctx, &snapshots[i]); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

// appendEvent writes the single audit record for a transition. A failure
// here is a partial transition and is surfaced as fatal, not as validation.
func (m *Manager) appendEvent(ctx context.Context, order *domain.Order, description string) error {
	event := &domain.OrderEvent{
		OrderID:     order.ID,
		CreatedAt:   time.Now().UTC(),
		Status:      order.Status,
		Description: description,
	}
	if err := m.store.InsertOrderEvent(ctx, event); err != nil {
		m.log.Error("order event not persisted", "order_id", order.ID, "description", description, "error", err)
		return fmt.Errorf("append order event: %w", err)
	}
	return nil
}

func (m *Manager) publish(topic string, order *domain.Order) {
	if m.events == nil {
		return
	}
	m.events.Publish(topic, map[string]interface{}{
		"order_id":  order.ID,
		"public_id": order.PublicID.String(),
		"status":    order.Status.String(),
	})
}
