package enums

import "fmt"

// BillType maps to the bill_type enum in Postgres.
type BillType string

const (
	BillTypeGST    BillType = "gst"
	BillTypeNonGST BillType = "non_gst"
)

var validBillTypes = []BillType{
	BillTypeGST,
	BillTypeNonGST,
}

// IsValid checks whether the given type matches the canonical enum.
func (b BillType) IsValid() bool {
	for _, candidate := range validBillTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillType converts raw strings into BillType.
func ParseBillType(value string) (BillType, error) {
	for _, candidate := range validBillTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bill type %q", value)
}
