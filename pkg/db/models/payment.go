package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelretail/pos-backend/pkg/enums"
)

// Payment is one tender line of a sale. A sale can split between cash and
// mobile money.
type Payment struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID           `gorm:"column:sale_id;type:uuid;not null;index"`
	Method    enums.PaymentMethod `gorm:"column:method;type:payment_method_enum;not null"`
	Amount    decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
