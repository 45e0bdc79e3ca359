// paylink-service/internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"paylink-system/services/paylink-service/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const merchantColumns = `id, public_id, name, website, supports_tips, active, logo_url`

func (s *PostgresStore) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE id = $1`, id)
	return scanMerchant(row)
}

func (s *PostgresStore) GetActiveMerchant(ctx context.Context) (*domain.Merchant, error) {
	// One active merchant at a time; enforced by the lifecycle layer, so we
	// just take the first.
	row := s.db.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE active LIMIT 1`)
	m, err := scanMerchant(row)
	if errors.Is(err, domain.ErrMerchantNotFound) {
		return nil, domain.ErrNoActiveMerchant
	}
	return m, err
}

func scanMerchant(row *sql.Row) (*domain.Merchant, error) {
	m := &domain.Merchant{}
	err := row.Scan(&m.ID, &m.PublicID, &m.Name, &m.Website, &m.SupportsTips, &m.Active, &m.LogoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMerchantNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PostgresStore) GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	item := &domain.CatalogItem{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, merchant_id, name, unit_price FROM catalog_items WHERE id = $1`, id).
		Scan(&item.ID, &item.MerchantID, &item.Name, &item.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCatalogItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

const orderColumns = `id, public_id, merchant_id, status, customer_name, customer_phone,
	ref_order_id, pan, auth_code, tip_amount, exp_month, exp_year, created_at`

func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, domain.ErrOrderNotFound
	}
	return scanOrder(rows)
}

func scanOrder(rows *sql.Rows) (*domain.Order, error) {
	o := &domain.Order{}
	var refOrderID sql.NullInt64
	err := rows.Scan(
		&o.ID, &o.PublicID, &o.MerchantID, &o.Status,
		&o.CustomerName, &o.CustomerPhone,
		&refOrderID, &o.PAN, &o.AuthCode, &o.TipAmount,
		&o.ExpMonth, &o.ExpYear, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refOrderID.Valid {
		o.RefOrderID = &refOrderID.Int64
	}
	return o, nil
}

func (s *PostgresStore) GetOrderExploded(ctx context.Context, id int64) (*domain.OrderGraph, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	merchant, err := s.GetMerchant(ctx, order.MerchantID)
	if err != nil {
		return nil, err
	}
	items, err := s.GetOrderLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := s.getOrderEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.OrderGraph{Order: *order, LineItems: items, Events: events, Merchant: *merchant}, nil
}

func (s *PostgresStore) InsertOrder(ctx context.Context, order *domain.Order) error {
	var refOrderID sql.NullInt64
	if order.RefOrderID != nil {
		refOrderID = sql.NullInt64{Int64: *order.RefOrderID, Valid: true}
	}
	return s.db.QueryRowContext(ctx,
		`INSERT INTO orders (public_id, merchant_id, status, customer_name, customer_phone,
		                     ref_order_id, pan, auth_code, tip_amount, exp_month, exp_year, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		order.PublicID, order.MerchantID, order.Status,
		order.CustomerName, order.CustomerPhone,
		refOrderID, order.PAN, order.AuthCode, order.TipAmount,
		order.ExpMonth, order.ExpYear, order.CreatedAt,
	).Scan(&order.ID)
}

func (s *PostgresStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, customer_name = $2, customer_phone = $3,
		     pan = $4, auth_code = $5, tip_amount = $6, exp_month = $7, exp_year = $8
		 WHERE id = $9`,
		order.Status, order.CustomerName, order.CustomerPhone,
		order.PAN, order.AuthCode, order.TipAmount, order.ExpMonth, order.ExpYear,
		order.ID,
	)
	if err != nil {
		return err
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (s *PostgresStore) InsertOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	return s.db.QueryRowContext(ctx,
		`INSERT INTO order_events (order_id, created_at, status, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		event.OrderID, event.CreatedAt, event.Status, event.Description,
	).Scan(&event.ID)
}

func (s *PostgresStore) getOrderEvents(ctx context.Context, orderID int64) ([]domain.OrderEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, created_at, status, description
		 FROM order_events WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var ev domain.OrderEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.CreatedAt, &ev.Status, &ev.Description); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *PostgresStore) GetOrderLineItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, name, unit_price
		 FROM order_line_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderLineItem
	for rows.Next() {
		var it domain.OrderLineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *PostgresStore) DeleteOrderLineItems(ctx context.Context, orderID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM order_line_items WHERE order_id = $1`, orderID)
	return err
}

func (s *PostgresStore) InsertOrderLineItem(ctx context.Context, item *domain.OrderLineItem) error {
	return s.db.QueryRowContext(ctx,
		`INSERT INTO order_line_items (order_id, name, unit_price)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		item.OrderID, item.Name, item.UnitPrice,
	).Scan(&item.ID)
}

func (s *PostgresStore) GetOrdersByRefOrderID(ctx context.Context, orderID int64) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE ref_order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) GetDemoCustomers(ctx context.Context, merchantID int64) ([]domain.DemoCustomer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, merchant_id, name, phone
		 FROM demo_customers WHERE merchant_id = $1 ORDER BY id`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.DemoCustomer
	for rows.Next() {
		var dc domain.DemoCustomer
		if err := rows.Scan(&dc.ID, &dc.MerchantID, &dc.Name, &dc.Phone); err != nil {
			return nil, err
		}
		customers = append(customers, dc)
	}
	return customers, rows.Err()
}

var _ domain.Store = (*PostgresStore)(nil)
