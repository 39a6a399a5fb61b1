package enums

import "fmt"

// PaymentMode describes how a customer intends to settle an order.
type PaymentMode string

const (
	PaymentModeCOD  PaymentMode = "cod"
	PaymentModeCard PaymentMode = "card"
	PaymentModeBank PaymentMode = "bank"
)

var validPaymentModes = []PaymentMode{
	PaymentModeCOD,
	PaymentModeCard,
	PaymentModeBank,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsSupported reports whether checkout can complete with this mode.
// Card and bank transfer are selectable but not yet wired end to end.
func (p PaymentMode) IsSupported() bool {
	return p == PaymentModeCOD
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
