package enums

import "fmt"

// PaymentMode maps to the payment_mode enum in Postgres.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeUPI    PaymentMode = "upi"
	PaymentModeBank   PaymentMode = "bank"
	PaymentModeCheque PaymentMode = "cheque"
)

var validPaymentModes = []PaymentMode{
	PaymentModeCash,
	PaymentModeUPI,
	PaymentModeBank,
	PaymentModeCheque,
}

// IsValid checks whether the given mode matches the canonical enum.
func (m PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw strings into PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}

// PaymentDirection records which way money moved between the shop and a party.
type PaymentDirection string

const (
	// PaymentDirectionPaid means the shop paid the party, reducing what the
	// shop owes.
	PaymentDirectionPaid PaymentDirection = "paid"
	// PaymentDirectionReceived means the party paid the shop, reducing what the
	// party owes.
	PaymentDirectionReceived PaymentDirection = "received"
)

var validPaymentDirections = []PaymentDirection{
	PaymentDirectionPaid,
	PaymentDirectionReceived,
}

// IsValid checks whether the given direction matches the canonical enum.
func (d PaymentDirection) IsValid() bool {
	for _, candidate := range validPaymentDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParsePaymentDirection converts raw strings into PaymentDirection.
func ParsePaymentDirection(value string) (PaymentDirection, error) {
	for _, candidate := range validPaymentDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment direction %q", value)
}
