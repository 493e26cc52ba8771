package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RepledgeEvent is an audit row for lifecycle changes on a repledge.
// CLOSED events are written inside the settlement transaction.
type RepledgeEvent struct {
	EventID    uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	RepledgeID uuid.UUID      `gorm:"column:repledge_id;type:uuid;not null;index" json:"repledge_id"`
	EventType  string         `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	EventData  datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt  time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (RepledgeEvent) TableName() string {
	return "RepledgeEvents"
}

func (e *RepledgeEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
