package enums

import "fmt"

// WarehouseType maps to the warehouse_type enum in Postgres. BOUTIQUE is a
// retail point of sale, STOCKAGE is a storage-only location.
type WarehouseType string

const (
	WarehouseTypeBoutique WarehouseType = "BOUTIQUE"
	WarehouseTypeStockage WarehouseType = "STOCKAGE"
)

var validWarehouseTypes = []WarehouseType{
	WarehouseTypeBoutique,
	WarehouseTypeStockage,
}

// IsValid reports whether the value matches the canonical warehouse_type enum.
func (w WarehouseType) IsValid() bool {
	for _, candidate := range validWarehouseTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWarehouseType converts raw input into WarehouseType.
func ParseWarehouseType(value string) (WarehouseType, error) {
	for _, candidate := range validWarehouseTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid warehouse type %q", value)
}
