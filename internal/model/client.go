package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription status values for client accounts.
const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionInactive = "INACTIVE"
)

// Client represents a business tenant account. ClientID is the stable tenant
// identifier handed out at registration; it is distinct from the row id and
// is the partition key every tenant-scoped query must filter by.
type Client struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	ClientID           string         `json:"client_id" gorm:"type:varchar(20);uniqueIndex;not null"`
	CompanyName        string         `json:"company_name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Username           string         `json:"username" gorm:"type:varchar(100);index;not null"`
	Password           string         `json:"-" gorm:"type:varchar(255);not null"`
	Email              string         `json:"email,omitempty" gorm:"type:varchar(100)"`
	Phone              string         `json:"phone,omitempty" gorm:"type:varchar(30)"`
	AccessStatus       bool           `json:"access_status" gorm:"default:true"`
	SubscriptionStatus string         `json:"subscription_status" gorm:"type:varchar(20);default:'ACTIVE'"`
	LastLogin          *time.Time     `json:"last_login,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// ClientIDCounter backs the tenant identifier sequence. A single row is
// incremented atomically each time a new client id is minted.
type ClientIDCounter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	NextID    uint      `json:"next_id" gorm:"not null;default:1"`
	UpdatedAt time.Time `json:"updated_at"`
}
