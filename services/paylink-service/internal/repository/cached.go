package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"paylink-system/services/paylink-service/internal/domain"
)

// CachedStore is a read-through cache in front of the primary store. Order
// and merchant reads are cached; every order write invalidates its entry.
type CachedStore struct {
	primary     domain.Store
	redisClient *redis.Client
	ttl         time.Duration
}

func NewCachedStore(primary domain.Store, redisClient *redis.Client, cacheTTL time.Duration) *CachedStore {
	return &CachedStore{
		primary:     primary,
		redisClient: redisClient,
		ttl:         cacheTTL,
	}
}

func orderKey(id int64) string    { return "paylink:order:" + strconv.FormatInt(id, 10) }
func merchantKey(id int64) string { return "paylink:merchant:" + strconv.FormatInt(id, 10) }

func (s *CachedStore) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	cached, err := s.redisClient.Get(ctx, orderKey(id)).Bytes()
	if err == nil {
		var order domain.Order
		if err := json.Unmarshal(cached, &order); err == nil {
			return &order, nil
		}
	}

	order, err := s.primary.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(order); err == nil {
		s.redisClient.Set(ctx, orderKey(id), data, s.ttl)
	}
	return order, nil
}

func (s *CachedStore) GetMerchant(ctx context.Context, id int64) (*domain.Merchant, error) {
	cached, err := s.redisClient.Get(ctx, merchantKey(id)).Bytes()
	if err == nil {
		var merchant domain.Merchant
		if err := json.Unmarshal(cached, &merchant); err == nil {
			return &merchant, nil
		}
	}

	merchant, err := s.primary.GetMerchant(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(merchant); err == nil {
		s.redisClient.Set(ctx, merchantKey(id), data, s.ttl)
	}
	return merchant, nil
}

func (s *CachedStore) InsertOrder(ctx context.Context, order *domain.Order) error {
	return s.primary.InsertOrder(ctx, order)
}

func (s *CachedStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	// Invalidate on update
	defer s.redisClient.Del(ctx, orderKey(order.ID))
	return s.primary.UpdateOrder(ctx, order)
}

// The composite read bypasses the cache: the exploded view must reflect the
// line items and events just written in the same request.
func (s *CachedStore) GetOrderExploded(ctx context.Context, id int64) (*domain.OrderGraph, error) {
	return s.primary.GetOrderExploded(ctx, id)
}

func (s *CachedStore) GetActiveMerchant(ctx context.Context) (*domain.Merchant, error) {
	return s.primary.GetActiveMerchant(ctx)
}

func (s *CachedStore) GetCatalogItem(ctx context.Context, id int64) (*domain.CatalogItem, error) {
	return s.primary.GetCatalogItem(ctx, id)
}

func (s *CachedStore) InsertOrderEvent(ctx context.Context, event *domain.OrderEvent) error {
	return s.primary.InsertOrderEvent(ctx, event)
}

func (s *CachedStore) GetOrderLineItems(ctx context.Context, orderID int64) ([]domain.OrderLineItem, error) {
	return s.primary.GetOrderLineItems(ctx, orderID)
}

func (s *CachedStore) DeleteOrderLineItems(ctx context.Context, orderID int64) error {
	defer s.redisClient.Del(ctx, orderKey(orderID))
	return s.primary.DeleteOrderLineItems(ctx, orderID)
}

func (s *CachedStore) InsertOrderLineItem(ctx context.Context, item *domain.OrderLineItem) error {
	return s.primary.InsertOrderLineItem(ctx, item)
}

func (s *CachedStore) GetOrdersByRefOrderID(ctx context.Context, orderID int64) ([]*domain.Order, error) {
	return s.primary.GetOrdersByRefOrderID(ctx, orderID)
}

func (s *CachedStore) GetDemoCustomers(ctx context.Context, merchantID int64) ([]domain.DemoCustomer, error) {
	return s.primary.GetDemoCustomers(ctx, merchantID)
}

var _ domain.Store = (*CachedStore)(nil)
