package enums

import "fmt"

// AlertType maps to the alert_type enum in Postgres.
type AlertType string

const (
	AlertTypeStockReduction    AlertType = "stock_reduction"
	AlertTypeTransferRequest   AlertType = "transfer_request"
	AlertTypeTransferApproval  AlertType = "transfer_approval"
	AlertTypeTransferRejection AlertType = "transfer_rejection"
	AlertTypeTransferReception AlertType = "transfer_reception"
	AlertTypeEmployeeCreation  AlertType = "employee_creation"
	AlertTypeProductDeletion   AlertType = "product_deletion"
)

var validAlertTypes = []AlertType{
	AlertTypeStockReduction,
	AlertTypeTransferRequest,
	AlertTypeTransferApproval,
	AlertTypeTransferRejection,
	AlertTypeTransferReception,
	AlertTypeEmployeeCreation,
	AlertTypeProductDeletion,
}

// IsValid reports whether the value matches the canonical alert_type enum.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw input into AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}

// AlertSeverity maps to the alert_severity enum in Postgres.
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

var validAlertSeverities = []AlertSeverity{
	AlertSeverityInfo,
	AlertSeverityWarning,
	AlertSeverityCritical,
}

// IsValid reports whether the value matches the canonical alert_severity enum.
func (a AlertSeverity) IsValid() bool {
	for _, candidate := range validAlertSeverities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertSeverity converts raw input into AlertSeverity.
func ParseAlertSeverity(value string) (AlertSeverity, error) {
	for _, candidate := range validAlertSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert severity %q", value)
}
