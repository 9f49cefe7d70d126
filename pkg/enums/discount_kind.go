package enums

import "fmt"

// DiscountKind selects how a cart-level discount value is interpreted.
type DiscountKind string

const (
	DiscountKindNone    DiscountKind = "none"
	DiscountKindPercent DiscountKind = "percent"
	DiscountKindFixed   DiscountKind = "fixed"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindNone,
	DiscountKindPercent,
	DiscountKindFixed,
}

// String implements fmt.Stringer.
func (d DiscountKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountKind.
func (d DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind. Empty input means none.
func ParseDiscountKind(value string) (DiscountKind, error) {
	if value == "" {
		return DiscountKindNone, nil
	}
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}
