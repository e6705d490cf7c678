package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Email types, one per notified lifecycle transition.
const (
	EmailAssigned              = "assigned"
	EmailConfirmed             = "confirmed"
	EmailCancellationRequested = "cancellation_requested"
	EmailCancellationApproved  = "cancellation_approved"
	EmailCancelledByAdmin      = "cancelled_by_admin"
)

// Recipient classes.
const (
	RecipientEmployee = "employee"
	RecipientManager  = "manager"
	RecipientOwner    = "owner"
)

// Delivery outcomes.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// NotificationLog is one immutable audit row per notification attempt.
// Rows are only ever inserted; the store exposes no update or delete path.
type NotificationLog struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	ScheduleID string `gorm:"type:uuid;not null;index"`

	EmailType      string `gorm:"size:32;not null"`
	RecipientEmail string `gorm:"size:256;not null"`
	RecipientClass string `gorm:"size:16;not null"`

	Status string `gorm:"size:8;not null"`
	Error  string `gorm:"type:text"`

	SentAt time.Time `gorm:"not null"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationRecipient is one entry of the externally managed roster that
// schedule lifecycle emails fan out to, in addition to the owning employee.
type NotificationRecipient struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	Email  string `gorm:"size:256;not null;uniqueIndex"`
	Name   string `gorm:"size:256"`
	Class  string `gorm:"size:16;not null"` // manager or owner
	Active bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationRecipient) TableName() string {
	return "notification_recipients"
}

func (r *NotificationRecipient) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
