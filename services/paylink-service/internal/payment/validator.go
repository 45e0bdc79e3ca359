// Package payment holds the payment-request business rules. Checks run in a
// fixed order and stop at the first failure; the caller applies the capture
// mutation only after all checks pass.
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"paylink-system/services/paylink-service/internal/card"
	"paylink-system/services/paylink-service/internal/domain"
)

type CaptureInput struct {
	PAN      string
	ExpMonth int
	ExpYear  int
	Tip      *decimal.Decimal
}

const panLength = 16

// Validate applies the payment-request rules against the candidate input.
// existingAuthCode non-empty means the order was already paid.
func Validate(today time.Time, in CaptureInput, merchantSupportsTips bool, existingAuthCode string) error {
	if in.ExpMonth < 1 || in.ExpMonth > 12 || in.ExpYear < 1 {
		return domain.Invalid(domain.FailInvalidExpirationDate,
			"expiration %d/%d is not a valid calendar date", in.ExpMonth, in.ExpYear)
	}

	firstOfMonth := time.Date(in.ExpYear, time.Month(in.ExpMonth), 1, 0, 0, 0, 0, time.UTC)
	if firstOfMonth.After(today.AddDate(5, 0, 0)) {
		return domain.Invalid(domain.FailInvalidExpirationDate,
			"expiration %d/%d is more than 5 years in the future", in.ExpMonth, in.ExpYear)
	}

	// The instrument is valid through the last day of its month.
	expiry := firstOfMonth.AddDate(0, 1, -1)
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(expiry) {
		return domain.Invalid(domain.FailExpiredInstrument,
			"card expired on %s", expiry.Format("2006-01-02"))
	}

	if !merchantSupportsTips && in.Tip != nil && !in.Tip.IsZero() {
		return domain.Invalid(domain.FailTipsNotSupported,
			"merchant does not support tips, got tip %s", in.Tip.StringFixed(2))
	}
	if in.Tip != nil && in.Tip.IsNegative() {
		return domain.Invalid(domain.FailInvalidTipAmount,
			"tip amount %s is negative", in.Tip.StringFixed(2))
	}

	cleaned := card.Clean(in.PAN)
	if len(cleaned) != panLength {
		return domain.Invalid(domain.FailInvalidPanLength,
			"card number must be %d digits, got %d", panLength, len(cleaned))
	}
	if !card.ValidateLuhn(cleaned) {
		return domain.Invalid(domain.FailInvalidPanChecksum,
			"card number failed checksum validation")
	}

	if existingAuthCode != "" {
		return domain.Invalid(domain.FailAlreadyPaid,
			"order is already paid, approval code %s", existingAuthCode)
	}
	return nil
}
