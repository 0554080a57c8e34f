package enums

import "fmt"

// TransferStatus maps to the transfer_status enum in Postgres.
//
// Allowed transitions: pending → approved | rejected, approved → received.
// rejected and received are terminal.
type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "pending"
	TransferStatusApproved TransferStatus = "approved"
	TransferStatusRejected TransferStatus = "rejected"
	TransferStatusReceived TransferStatus = "received"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusApproved,
	TransferStatusRejected,
	TransferStatusReceived,
}

// IsValid reports whether the value matches the canonical transfer_status enum.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusRejected || s == TransferStatusReceived
}

// CanTransitionTo reports whether the transition table allows s → next.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return next == TransferStatusApproved || next == TransferStatusRejected
	case TransferStatusApproved:
		return next == TransferStatusReceived
	default:
		return false
	}
}

// ParseTransferStatus converts raw input into TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
