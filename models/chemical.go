package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ChemicalProduct is a priced entry in the spray catalog.
type ChemicalProduct struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	Name          string          `gorm:"uniqueIndex;not null"`
	PricePerUnit  decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	PriceUnit     string          `gorm:"type:varchar(10);not null"` // oz, gal, lb
	ContainerSize decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	ContainerUnit string          `gorm:"type:varchar(10);not null"`
	IsActive      bool            `gorm:"default:true"`

	Variants []ContainerVariant `gorm:"foreignKey:ProductID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ContainerVariant struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Label     string          // e.g. "2.5 gal jug", "105 gal shuttle"
	Size      decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Unit      string          `gorm:"type:varchar(10);not null"`
}

type SprayProgram struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"not null"`
	Description string
	Passes      []SprayPass `gorm:"foreignKey:ProgramID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type SprayPass struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProgramID uuid.UUID `gorm:"type:uuid;index;not null"`
	Sequence  int       `gorm:"not null"`
	Name      string
	Products  []PassProduct `gorm:"foreignKey:PassID"`
}

type PassProduct struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	PassID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Product   ChemicalProduct `gorm:"foreignKey:ProductID"`
	Rate      decimal.Decimal `gorm:"type:decimal(12,4);not null"` // per acre
	RateUnit  string          `gorm:"type:varchar(10);not null"`
}

// DiscountTier applies PercentOff once program acreage reaches MinAcres.
type DiscountTier struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	MinAcres   decimal.Decimal `gorm:"type:decimal(12,2);uniqueIndex;not null"`
	PercentOff decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

func (p *ChemicalProduct) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (v *ContainerVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

func (p *SprayProgram) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *SprayPass) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (p *PassProduct) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (t *DiscountTier) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
