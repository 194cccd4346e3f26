package enums

import "fmt"

// ProductRequestType maps to the product_request_type enum in Postgres.
type ProductRequestType string

const (
	ProductRequestTypeAdd    ProductRequestType = "add"
	ProductRequestTypeEdit   ProductRequestType = "edit"
	ProductRequestTypeDelete ProductRequestType = "delete"
)

var validProductRequestTypes = []ProductRequestType{
	ProductRequestTypeAdd,
	ProductRequestTypeEdit,
	ProductRequestTypeDelete,
}

// IsValid checks whether the given type matches the canonical enum.
func (t ProductRequestType) IsValid() bool {
	for _, candidate := range validProductRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseProductRequestType converts raw strings into ProductRequestType.
func ParseProductRequestType(value string) (ProductRequestType, error) {
	for _, candidate := range validProductRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product request type %q", value)
}
