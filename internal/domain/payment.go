package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodWallet       PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodCash, MethodBankTransfer, MethodWallet:
		return true
	}
	return false
}

// Payment is tied 1:1 to a rental through the unique rental_id index.
type Payment struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	RentalID    int64         `json:"rental_id" gorm:"not null;uniqueIndex"`
	Amount      float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method      PaymentMethod `json:"payment_method" gorm:"column:payment_method;type:varchar(32);not null"`
	Status      PaymentStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Reference   string        `json:"reference" gorm:"size:64;not null;uniqueIndex"`
	PaymentDate *time.Time    `json:"payment_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
