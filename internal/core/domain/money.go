package domain

// Currency is an ISO 4217 three-letter code. All amounts in the system are
// int64 minor units (cents); there is no float arithmetic anywhere money is
// compared or summed.
type Currency string

const (
	USD Currency = "USD"
	TZS Currency = "TZS"
)

// IsValid reports whether the code is shaped like an ISO 4217 code. Accounts
// are single-currency; conversion is out of scope, so shape is all we check.
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}
