package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RepledgeStatusOpen   = "open"
	RepledgeStatusClosed = "closed"
)

// Repledge is a loan the business took from a bank against gold it already
// holds as pledged collateral. Created at intake when the bank loan is taken;
// its status is flipped to closed exactly once by a settlement commit.
type Repledge struct {
	RepledgeID   uuid.UUID       `gorm:"column:repledge_id;type:uuid;primaryKey" json:"repledge_id"`
	RepledgeNo   string          `gorm:"column:repledge_no;type:varchar(30);uniqueIndex;not null" json:"repledge_no"`
	LoanNo       string          `gorm:"column:loan_no;type:varchar(30);not null" json:"loan_no"`
	BankID       uuid.UUID       `gorm:"column:bank_id;type:uuid;not null" json:"bank_id"`
	Bank         *Bank           `gorm:"foreignKey:BankID;references:BankID" json:"bank,omitempty"`
	Principal    decimal.Decimal `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	InterestRate decimal.Decimal `gorm:"column:interest_rate;type:decimal(8,2);not null" json:"interest_rate"`
	StartDate    time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	Status       string          `gorm:"column:status;type:varchar(20);default:'open'" json:"status"`
	CreatedAt    time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Repledge) TableName() string {
	return "Repledges"
}

func (r *Repledge) BeforeCreate(tx *gorm.DB) error {
	if r.RepledgeID == uuid.Nil {
		r.RepledgeID = uuid.New()
	}
	return nil
}
