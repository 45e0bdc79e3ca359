// Package card classifies and checks payment card numbers and generates
// customer-facing approval codes.
package card

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

type Network string

const (
	NetworkAmex       Network = "AMERICAN_EXPRESS"
	NetworkDiscover   Network = "DISCOVER"
	NetworkVisa       Network = "VISA"
	NetworkMastercard Network = "MASTERCARD"
	NetworkUnknown    Network = "UNKNOWN"
)

// Prefix tables are checked in priority order; first match wins.
var networkPrefixes = []struct {
	network  Network
	prefixes []string
}{
	{NetworkAmex, []string{"34", "37"}},
	{NetworkDiscover, []string{"6011", "644", "645", "646", "647", "648", "649", "65"}},
	{NetworkVisa, []string{"4"}},
	{NetworkMastercard, []string{"51", "52", "53", "54", "55", "22", "23", "24", "25", "26", "27"}},
}

// ClassifyNetwork matches the PAN prefix against the network tables.
func ClassifyNetwork(pan string) Network {
	pan = Clean(pan)
	for _, table := range networkPrefixes {
		for _, prefix := range table.prefixes {
			if strings.HasPrefix(pan, prefix) {
				return table.network
			}
		}
	}
	return NetworkUnknown
}

// ValidateLuhn runs the mod-10 checksum over the full digit string.
// Any non-digit character fails the check.
func ValidateLuhn(pan string) bool {
	if pan == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		c := pan[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// authLetters excludes visually ambiguous characters (I, L, O).
const authLetters = "ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateAuthCode produces an approval code of the form
// "0" + 4 random digits in [1000,9999] + one letter from authLetters.
// The source is crypto/rand; a predictable code would erode customer trust.
func GenerateAuthCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate auth code: %w", err)
	}
	l, err := rand.Int(rand.Reader, big.NewInt(int64(len(authLetters))))
	if err != nil {
		return "", fmt.Errorf("generate auth code: %w", err)
	}
	return fmt.Sprintf("0%d%c", 1000+n.Int64(), authLetters[l.Int64()]), nil
}

// Clean strips whitespace and hyphens. No validation.
func Clean(pan string) string {
	var b strings.Builder
	b.Grow(len(pan))
	for _, r := range pan {
		switch r {
		case ' ', '\t', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Mask renders a PAN as AAAA-AAXX-XXXX-LLLL (first six digits grouped 4+2,
// last four digits). Presentation only; masked PANs are never stored.
func Mask(pan string) string {
	pan = Clean(pan)
	if len(pan) < 10 {
		return pan
	}
	return pan[:4] + "-" + pan[4:6] + "XX-XXXX-" + pan[len(pan)-4:]
}
