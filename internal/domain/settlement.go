package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment methods accepted when settling a repledge with the bank.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodUPI          = "upi"
)

// ValidPaymentMethod reports whether m is one of the accepted payment methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI:
		return true
	}
	return false
}

// RepledgeSettlement is the persisted record of a close. At most one exists
// per repledge (unique index); it is inserted in the same transaction that
// flips the repledge status to closed. CommitToken dedupes retried commits
// after a reported failure.
type RepledgeSettlement struct {
	SettlementID       uuid.UUID       `gorm:"column:settlement_id;type:uuid;primaryKey" json:"settlement_id"`
	RepledgeID         uuid.UUID       `gorm:"column:repledge_id;type:uuid;uniqueIndex;not null" json:"repledge_id"`
	EndDate            time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	PaymentMethod      string          `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	CalculationMethod  string          `gorm:"column:calculation_method;type:varchar(20);not null" json:"calculation_method"`
	DurationDays       int             `gorm:"column:duration_days;not null" json:"duration_days"`
	FinalInterestRate  decimal.Decimal `gorm:"column:final_interest_rate;type:decimal(8,2);not null" json:"final_interest_rate"`
	CalculatedInterest decimal.Decimal `gorm:"column:calculated_interest;type:decimal(18,2);not null" json:"calculated_interest"`
	TotalPayable       decimal.Decimal `gorm:"column:total_payable;type:decimal(18,2);not null" json:"total_payable"`
	CommitToken        uuid.UUID       `gorm:"column:commit_token;type:uuid;uniqueIndex;not null" json:"commit_token"`
	CreatedAt          time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (RepledgeSettlement) TableName() string {
	return "RepledgeSettlements"
}

func (s *RepledgeSettlement) BeforeCreate(tx *gorm.DB) error {
	if s.SettlementID == uuid.Nil {
		s.SettlementID = uuid.New()
	}
	return nil
}
