package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// StockReducedEvent fires whenever an inventory adjustment takes quantity out
// of a warehouse.
type StockReducedEvent struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	Balance     int       `json:"balance"`
	Reason      string    `json:"reason,omitempty"`
}

// TransferRequestedEvent signals a new pending stock transfer.
type TransferRequestedEvent struct {
	TransferID        uuid.UUID `json:"transfer_id"`
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	SourceWarehouseID uuid.UUID `json:"source_warehouse_id"`
	DestWarehouseID   uuid.UUID `json:"dest_warehouse_id"`
	Quantity          *int      `json:"quantity,omitempty"`
}

// TransferDecidedEvent is shared by approval and rejection outcomes.
type TransferDecidedEvent struct {
	TransferID        uuid.UUID            `json:"transfer_id"`
	ProductID         uuid.UUID            `json:"product_id"`
	ProductName       string               `json:"product_name"`
	SourceWarehouseID uuid.UUID            `json:"source_warehouse_id"`
	DestWarehouseID   uuid.UUID            `json:"dest_warehouse_id"`
	Quantity          int                  `json:"quantity"`
	Status            enums.TransferStatus `json:"status"`
	Reason            string               `json:"reason,omitempty"`
}

// TransferReceivedEvent fires when stock lands at the destination warehouse.
type TransferReceivedEvent struct {
	TransferID        uuid.UUID `json:"transfer_id"`
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	SourceWarehouseID uuid.UUID `json:"source_warehouse_id"`
	DestWarehouseID   uuid.UUID `json:"dest_warehouse_id"`
	Quantity          int       `json:"quantity"`
	ReceivedAt        time.Time `json:"received_at"`
}

// EmployeeCreatedEvent announces a new staff account.
type EmployeeCreatedEvent struct {
	EmployeeID uuid.UUID  `json:"employee_id"`
	FullName   string     `json:"full_name"`
	Role       enums.Role `json:"role"`
}

// ProductDeletedEvent announces a catalog removal.
type ProductDeletedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
}

// ShiftClosedEvent carries the reconciliation snapshot of a closed shift.
type ShiftClosedEvent struct {
	ShiftID        uuid.UUID       `json:"shift_id"`
	EmployeeID     uuid.UUID       `json:"employee_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	ClosingCash    decimal.Decimal `json:"closing_cash"`
	CashDifference decimal.Decimal `json:"cash_difference"`
	EndedAt        time.Time       `json:"ended_at"`
}
