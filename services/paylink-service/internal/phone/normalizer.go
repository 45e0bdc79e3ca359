// Package phone wraps libphonenumber behind the normalizer port.
package phone

import "github.com/nyaruka/phonenumbers"

type Normalizer struct{}

func NewNormalizer() Normalizer {
	return Normalizer{}
}

// Normalize parses raw against the given region and returns the national
// and E.164 renderings. ok is false for unparsable or invalid numbers.
func (Normalizer) Normalize(raw, region string) (ok bool, national, e164 string) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return false, "", ""
	}
	if !phonenumbers.IsValidNumber(num) {
		return false, "", ""
	}
	return true,
		phonenumbers.Format(num, phonenumbers.NATIONAL),
		phonenumbers.Format(num, phonenumbers.E164)
}
