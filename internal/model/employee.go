package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Employee is the minimal directory projection the engine consumes.
// Identity and role resolution live upstream; this table only carries what
// notification fan-out and ownership checks need.
type Employee struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	Name   string `gorm:"size:256;not null"`
	Email  string `gorm:"size:256;not null;uniqueIndex"`
	Active bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// EmployeeShift is the configured reference shift used to compute the late
// and early-checkout flags. Absence of a row disables both flags.
type EmployeeShift struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	EmployeeID string `gorm:"type:uuid;not null;uniqueIndex"`
	StartTime  string `gorm:"size:5;not null"` // "15:04"
	EndTime    string `gorm:"size:5;not null"` // "15:04"

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EmployeeShift) TableName() string {
	return "employee_shifts"
}

func (s *EmployeeShift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// EmployeeRate is the hourly rate consumed by the timecard aggregator.
type EmployeeRate struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	EmployeeID string          `gorm:"type:uuid;not null;uniqueIndex"`
	HourlyRate decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EmployeeRate) TableName() string {
	return "employee_rates"
}

func (r *EmployeeRate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
