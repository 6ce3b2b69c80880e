package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	LeaseStatusActive     = "active"
	LeaseStatusTerminated = "terminated"
)

// Lease is a landlord/tenant rental agreement billed monthly.
type Lease struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	LandlordID uuid.UUID `gorm:"type:uuid;index;not null"`

	PropertyName    string `gorm:"not null"`
	PropertyAddress string
	TenantName      string `gorm:"not null"`
	TenantEmail     string
	TenantPhone     string

	MonthlyRent     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RentDueDay      int             `gorm:"not null;default:1"`
	LateFeeAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GracePeriodDays int             `gorm:"not null;default:5"`

	StartDate time.Time `gorm:"not null"`
	EndDate   *time.Time
	Status    string `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes     string

	Invoices []RentInvoice `gorm:"foreignKey:LeaseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (l *Lease) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
