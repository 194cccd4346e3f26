package enums

import "fmt"

// PartyKind distinguishes khata counterparties: vyapari (trader) and karigar
// (artisan) share one ledger schema and differ only in kind.
type PartyKind string

const (
	PartyKindVyapari PartyKind = "vyapari"
	PartyKindKarigar PartyKind = "karigar"
)

var validPartyKinds = []PartyKind{
	PartyKindVyapari,
	PartyKindKarigar,
}

// IsValid checks whether the given kind matches the canonical enum.
func (k PartyKind) IsValid() bool {
	for _, candidate := range validPartyKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// EntryPrefix returns the display-number prefix for ledger entries of this kind.
func (k PartyKind) EntryPrefix() string {
	if k == PartyKindKarigar {
		return "KT"
	}
	return "VT"
}

// ParsePartyKind converts raw strings into PartyKind.
func ParsePartyKind(value string) (PartyKind, error) {
	for _, candidate := range validPartyKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party kind %q", value)
}
