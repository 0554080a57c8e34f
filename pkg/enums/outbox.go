package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateInventory       OutboxAggregateType = "inventory"
	AggregateTransferRequest OutboxAggregateType = "transfer_request"
	AggregateShift           OutboxAggregateType = "shift"
	AggregateEmployee        OutboxAggregateType = "employee"
	AggregateProduct         OutboxAggregateType = "product"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateInventory,
	AggregateTransferRequest,
	AggregateShift,
	AggregateEmployee,
	AggregateProduct,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventStockReduced      OutboxEventType = "stock_reduced"
	EventTransferRequested OutboxEventType = "transfer_requested"
	EventTransferApproved  OutboxEventType = "transfer_approved"
	EventTransferRejected  OutboxEventType = "transfer_rejected"
	EventTransferReceived  OutboxEventType = "transfer_received"
	EventEmployeeCreated   OutboxEventType = "employee_created"
	EventProductDeleted    OutboxEventType = "product_deleted"
	EventShiftClosed       OutboxEventType = "shift_closed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventStockReduced,
	EventTransferRequested,
	EventTransferApproved,
	EventTransferRejected,
	EventTransferReceived,
	EventEmployeeCreated,
	EventProductDeleted,
	EventShiftClosed,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason maps to the outbox_dlq_error_reason enum in Postgres.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value matches the canonical outbox_dlq_error_reason enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
