package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity records one write-path operation issued through the relay
type Activity struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Kind      string    `gorm:"column:kind;type:varchar(32);not null;index"`
	Subject   string    `gorm:"column:subject;type:varchar(255);not null;index"`
	Status    string    `gorm:"column:status;type:varchar(16);not null"`
	Detail    string    `gorm:"column:detail;type:text"`
	Error     string    `gorm:"column:error;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Activity) TableName() string {
	return "relay_activity"
}

// BeforeCreate assigns a uuid when none is set.
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
