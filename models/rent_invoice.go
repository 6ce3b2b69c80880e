package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoicePending    InvoiceStatus = "pending"
	InvoiceProcessing InvoiceStatus = "processing"
	InvoiceCompleted  InvoiceStatus = "completed"
	InvoiceFailed     InvoiceStatus = "failed"
	InvoiceRefunded   InvoiceStatus = "refunded"
	InvoiceCancelled  InvoiceStatus = "cancelled"
)

// RentInvoice is one billing period of a lease. The unique index on
// (lease_id, period_year, period_month) is what keeps concurrent
// generators from creating two invoices for the same period.
type RentInvoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	LeaseID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lease_period,priority:1"`
	PeriodYear  int       `gorm:"not null;uniqueIndex:idx_lease_period,priority:2"`
	PeriodMonth int       `gorm:"not null;uniqueIndex:idx_lease_period,priority:3"`

	InvoiceNumber string `gorm:"uniqueIndex;not null"`

	AmountDue  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DueDate    time.Time       `gorm:"not null;index"`
	Status     InvoiceStatus   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidDate   *time.Time

	IsLate         bool            `gorm:"default:false"`
	DaysLate       int             `gorm:"default:0"`
	LateFeeApplied bool            `gorm:"default:false"`
	LateFeeAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Lease terms at generation time.
	ConfiguredLateFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GracePeriodDays   int             `gorm:"not null;default:0"`

	Lease    *Lease    `gorm:"foreignKey:LeaseID"`
	Payments []Payment `gorm:"foreignKey:InvoiceID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *RentInvoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method         string          `gorm:"type:varchar(30)"` // check, ach, card, cash
	TransactionRef string          `gorm:"index"`
	PaidDate       time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
