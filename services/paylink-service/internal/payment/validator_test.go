package payment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink-system/services/paylink-service/internal/domain"
)

var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

const validPAN = "4111111111111111"

func validInput() CaptureInput {
	return CaptureInput{PAN: validPAN, ExpMonth: 12, ExpYear: 2026}
}

func assertKind(t *testing.T, err error, kind domain.FailureKind) {
	t.Helper()
	require.Error(t, err)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, kind, ve.Kind)
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, Validate(today, validInput(), true, ""))
}

func TestExpirationDate(t *testing.T) {
	tests := []struct {
		name        string
		month, year int
		wantKind    domain.FailureKind
	}{
		{"month zero", 0, 2025, domain.FailInvalidExpirationDate},
		{"month thirteen", 13, 2025, domain.FailInvalidExpirationDate},
		{"more than five years out", 1, 2030, domain.FailInvalidExpirationDate},
		{"previous month expired", 2, 2024, domain.FailExpiredInstrument},
		{"previous year expired", 3, 2023, domain.FailExpiredInstrument},
		{"current month accepted", 3, 2024, ""},
		{"exactly five years out accepted", 3, 2029, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.ExpMonth = tt.month
			in.ExpYear = tt.year
			err := Validate(today, in, true, "")
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			assertKind(t, err, tt.wantKind)
		})
	}
}

func TestExpiredMessageIncludesBoundary(t *testing.T) {
	in := validInput()
	in.ExpMonth = 2
	in.ExpYear = 2024
	err := Validate(today, in, true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-02-29")
}

func TestTipRules(t *testing.T) {
	tip := decimal.RequireFromString("5.00")
	zero := decimal.Zero
	negative := decimal.RequireFromString("-1.00")

	in := validInput()
	in.Tip = &tip
	assertKind(t, Validate(today, in, false, ""), domain.FailTipsNotSupported)

	in.Tip = &zero
	assert.NoError(t, Validate(today, in, false, ""))

	in.Tip = nil
	assert.NoError(t, Validate(today, in, false, ""))

	in.Tip = &negative
	assertKind(t, Validate(today, in, true, ""), domain.FailInvalidTipAmount)
}

func TestPanRules(t *testing.T) {
	in := validInput()
	in.PAN = "4111-1111-1111-1111" // separators are cleaned before checking
	assert.NoError(t, Validate(today, in, true, ""))

	in.PAN = "411111111111111" // 15 digits
	assertKind(t, Validate(today, in, true, ""), domain.FailInvalidPanLength)

	in.PAN = "4111111111111112"
	assertKind(t, Validate(today, in, true, ""), domain.FailInvalidPanChecksum)
}

func TestAlreadyPaid(t *testing.T) {
	err := Validate(today, validInput(), true, "01234K")
	assertKind(t, err, domain.FailAlreadyPaid)
	assert.Contains(t, err.Error(), "01234K")
}

func TestStopsAtFirstFailure(t *testing.T) {
	// Both the expiry and the PAN are bad; the expiry check runs first.
	in := CaptureInput{PAN: "bad", ExpMonth: 2, ExpYear: 2024}
	assertKind(t, Validate(today, in, true, ""), domain.FailExpiredInstrument)
}
