package enums

import "fmt"

// StockMovementType maps to the stock_movement_type enum in Postgres.
type StockMovementType string

const (
	MovementIn         StockMovementType = "in"
	MovementOut        StockMovementType = "out"
	MovementAdjustment StockMovementType = "adjustment"
	MovementTransfer   StockMovementType = "transfer"
)

var validStockMovementTypes = []StockMovementType{
	MovementIn,
	MovementOut,
	MovementAdjustment,
	MovementTransfer,
}

// IsValid reports whether the value matches the canonical stock_movement_type enum.
func (m StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
