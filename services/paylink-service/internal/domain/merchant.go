package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCatalogOwner is the sentinel merchant id owning the shared catalog.
const DefaultCatalogOwner int64 = 0

type Merchant struct {
	ID           int64
	PublicID     uuid.UUID
	Name         string
	Website      string
	SupportsTips bool
	Active       bool
	LogoURL      string
}

type CatalogItem struct {
	ID         int64
	MerchantID int64 // DefaultCatalogOwner for the shared default catalog
	Name       string
	UnitPrice  decimal.Decimal // non-negative
}

// DemoCustomer seeds demo order clones when a payment link is sent on a
// primary order.
type DemoCustomer struct {
	ID         int64
	MerchantID int64
	Name       string
	Phone      string // normalized E.164
}
