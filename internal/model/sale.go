package model

import (
	"time"

	"gorm.io/gorm"
)

// SaleRecord is a sales ledger row. Every row carries the owning tenant's
// ClientID; handlers must filter on it for all reads and stamp it on writes.
type SaleRecord struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ClientID    string         `json:"client_id" gorm:"type:varchar(20);index;not null"`
	Description string         `json:"description" gorm:"type:varchar(255);not null"`
	Customer    string         `json:"customer" gorm:"type:varchar(100)"`
	Amount      float64        `json:"amount" gorm:"not null"`
	Paid        bool           `json:"paid" gorm:"default:false"`
	SaleDate    time.Time      `json:"sale_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
