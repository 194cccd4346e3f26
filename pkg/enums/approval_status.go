package enums

import "fmt"

// ApprovalStatus gates khata parties, ledger entries, and payments. It is a
// tri-state on purpose: pending means awaiting an admin decision, rejected is an
// explicit terminal refusal, not a filtered-out pending row.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusPending,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status can no longer transition.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// ParseApprovalStatus converts raw strings into ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
