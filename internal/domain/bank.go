package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bank is the lending bank a repledge was taken from. Reference data,
// read-only for the settlement flow.
type Bank struct {
	BankID    uuid.UUID `gorm:"column:bank_id;type:uuid;primaryKey" json:"bank_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Code      string    `gorm:"column:code;type:varchar(20);uniqueIndex;not null" json:"code"`
	Branch    string    `gorm:"column:branch;not null" json:"branch"`
	CreatedAt time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Bank) TableName() string {
	return "Banks"
}

func (b *Bank) BeforeCreate(tx *gorm.DB) error {
	if b.BankID == uuid.Nil {
		b.BankID = uuid.New()
	}
	return nil
}
