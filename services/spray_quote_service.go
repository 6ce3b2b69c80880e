package services

import (
	"context"

	"m77ag-backend/models"
	"m77ag-backend/spray"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SprayCatalog is the storage the quote service reads.
type SprayCatalog interface {
	GetProgram(ctx context.Context, id uuid.UUID) (*models.SprayProgram, error)
	ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error)
}

type SprayQuoteService struct {
	catalog SprayCatalog
	logger  *zap.Logger
}

func NewSprayQuoteService(catalog SprayCatalog, logger *zap.Logger) *SprayQuoteService {
	return &SprayQuoteService{catalog: catalog, logger: logger}
}

// QuoteStoredProgram prices a saved program with the current discount tiers.
func (s *SprayQuoteService) QuoteStoredProgram(ctx context.Context, programID uuid.UUID, acres decimal.Decimal) (*spray.Quote, error) {
	program, err := s.catalog.GetProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	return s.Quote(ctx, ProgramFromModel(program), acres, nil)
}

// Quote prices an arbitrary program. When tiers is nil the stored tiers are used.
func (s *SprayQuoteService) Quote(ctx context.Context, program spray.Program, acres decimal.Decimal, tiers []spray.DiscountTier) (*spray.Quote, error) {
	if tiers == nil {
		stored, err := s.catalog.ListDiscountTiers(ctx)
		if err != nil {
			return nil, err
		}
		tiers = TiersFromModel(stored)
	}

	quote, err := spray.QuoteProgram(program, acres, tiers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("spray program quoted",
		zap.String("program", program.Name),
		zap.String("acres", acres.String()),
		zap.String("final_total", quote.FinalTotal.StringFixed(2)),
	)
	return quote, nil
}

// ProgramFromModel converts a stored program. Passes must already be in
// sequence order.
func ProgramFromModel(p *models.SprayProgram) spray.Program {
	program := spray.Program{Name: p.Name, Passes: make([]spray.Pass, 0, len(p.Passes))}
	for _, pass := range p.Passes {
		sp := spray.Pass{Name: pass.Name, Products: make([]spray.PassProduct, 0, len(pass.Products))}
		for _, pp := range pass.Products {
			sp.Products = append(sp.Products, spray.PassProduct{
				Product:  ProductFromModel(&pp.Product),
				Rate:     pp.Rate,
				RateUnit: pp.RateUnit,
			})
		}
		program.Passes = append(program.Passes, sp)
	}
	return program
}

// ProductFromModel includes the product's standard container followed by
// its variants.
func ProductFromModel(p *models.ChemicalProduct) spray.Product {
	product := spray.Product{Name: p.Name, Price: p.PricePerUnit, PriceUnit: p.PriceUnit}
	if p.ContainerSize.IsPositive() {
		product.Containers = append(product.Containers, spray.Container{
			Label: "standard",
			Size:  p.ContainerSize,
			Unit:  p.ContainerUnit,
		})
	}
	for _, v := range p.Variants {
		product.Containers = append(product.Containers, spray.Container{Label: v.Label, Size: v.Size, Unit: v.Unit})
	}
	return product
}

func TiersFromModel(stored []models.DiscountTier) []spray.DiscountTier {
	tiers := make([]spray.DiscountTier, 0, len(stored))
	for _, t := range stored {
		tiers = append(tiers, spray.DiscountTier{MinAcres: t.MinAcres, PercentOff: t.PercentOff})
	}
	return tiers
}
