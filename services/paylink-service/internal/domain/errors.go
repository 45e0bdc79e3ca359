package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies validation failures. These are client-visible
// rejections, never logged as system errors and never retried.
type FailureKind string

const (
	FailInvalidExpirationDate FailureKind = "InvalidExpirationDate"
	FailExpiredInstrument     FailureKind = "ExpiredInstrument"
	FailTipsNotSupported      FailureKind = "TipsNotSupported"
	FailInvalidTipAmount      FailureKind = "InvalidTipAmount"
	FailInvalidPanLength      FailureKind = "InvalidPanLength"
	FailInvalidPanChecksum    FailureKind = "InvalidPanChecksum"
	FailAlreadyPaid           FailureKind = "AlreadyPaid"
	FailUnknownCatalogItem    FailureKind = "UnknownCatalogItem"
	FailOrderLocked           FailureKind = "OrderLocked"
	FailInvalidOrderFields    FailureKind = "InvalidOrderFields"
	FailInvalidPhoneNumber    FailureKind = "InvalidPhoneNumber"
	FailEmptyOrder            FailureKind = "EmptyOrder"
)

// ValidationError carries a failure kind and a message displayable without
// further lookups.
type ValidationError struct {
	Kind    FailureKind
	Message string
}

func (e *ValidationError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func Invalid(kind FailureKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps err into a ValidationError, if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Integrity failures: a referenced row vanished between read and write.
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrMerchantNotFound    = errors.New("merchant not found")
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrNoActiveMerchant    = errors.New("no active merchant configured")
)

// ErrNotificationFailed marks a notification-dispatch transport failure.
// It is fatal for the current operation; the core never retries it.
var ErrNotificationFailed = errors.New("notification dispatch failed")

// IsNotFound reports whether err is one of the integrity sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrMerchantNotFound) ||
		errors.Is(err, ErrCatalogItemNotFound) ||
		errors.Is(err, ErrNoActiveMerchant)
}
