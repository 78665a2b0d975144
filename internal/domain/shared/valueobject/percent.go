package valueobject

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PercentDigits is the number of fraction digits carried by percentages.
const PercentDigits int32 = 2

// Percent is a value object for fractional shares expressed as a percentage.
// It is immutable; arithmetic returns new instances.
type Percent struct {
	value decimal.Decimal
}

// NewPercent creates a Percent from a decimal value.
// The value must be in the half-open range (0, 100].
func NewPercent(value decimal.Decimal) (Percent, error) {
	if value.LessThanOrEqual(decimal.Zero) {
		return Percent{}, fmt.Errorf("percentage must be positive, got %s", value)
	}
	if value.GreaterThan(decimal.NewFromInt(100)) {
		return Percent{}, fmt.Errorf("percentage cannot exceed 100, got %s", value)
	}
	return Percent{value: value.Round(PercentDigits)}, nil
}

// NewPercentFromString creates a Percent from its string representation
func NewPercentFromString(value string) (Percent, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Percent{}, fmt.Errorf("invalid percentage string: %w", err)
	}
	return NewPercent(d)
}

// NewPercentFromFloat creates a Percent from a float64
func NewPercentFromFloat(value float64) (Percent, error) {
	return NewPercent(decimal.NewFromFloat(value))
}

// Value returns the decimal percentage value
func (p Percent) Value() decimal.Decimal {
	return p.value
}

// Add returns the sum of two percentages without range checking.
// Sums above 100 are legal intermediates while accumulating a share set.
func (p Percent) Add(other Percent) decimal.Decimal {
	return p.value.Add(other.value)
}

// ApplyTo returns the given amount scaled by this percentage
func (p Percent) ApplyTo(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.value).Div(decimal.NewFromInt(100))
}

// Equals returns true if both percentages are equal
func (p Percent) Equals(other Percent) bool {
	return p.value.Equal(other.value)
}

// String returns the percentage with fixed fraction digits
func (p Percent) String() string {
	return p.value.StringFixed(PercentDigits) + "%"
}

// MarshalJSON implements json.Marshaler
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value.StringFixed(PercentDigits))
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Percent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewPercentFromString(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
