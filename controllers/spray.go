package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"m77ag-backend/models"
	"m77ag-backend/services"
	"m77ag-backend/spray"
	"m77ag-backend/store"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PassProductInput struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Rate      decimal.Decimal `json:"rate"`
	RateUnit  string          `json:"rateUnit" binding:"required"`
}

type SprayPassInput struct {
	Name     string             `json:"name"`
	Products []PassProductInput `json:"products"`
}

type CreateSprayProgramInput struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Passes      []SprayPassInput `json:"passes" binding:"required,min=1"`
}

type QuoteInput struct {
	Acres decimal.Decimal `json:"acres"`
}

// AdhocQuoteInput prices a program that is not stored. Tiers default to the
// stored discount tiers when omitted.
type AdhocQuoteInput struct {
	Program spray.Program        `json:"program"`
	Acres   decimal.Decimal      `json:"acres"`
	Tiers   []spray.DiscountTier `json:"tiers"`
}

type DiscountTierInput struct {
	MinAcres   decimal.Decimal `json:"minAcres"`
	PercentOff decimal.Decimal `json:"percentOff"`
}

// SprayController serves spray programs, discount tiers and quotes.
type SprayController struct {
	Quotes  *services.SprayQuoteService
	Catalog *store.Store
	DB      *gorm.DB
}

func (sc *SprayController) CreateProgram(c *gin.Context) {
	var input CreateSprayProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	program := models.SprayProgram{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	productIDs := map[uuid.UUID]bool{}
	for i, p := range input.Passes {
		pass := models.SprayPass{Sequence: i + 1, Name: p.Name}
		if pass.Name == "" {
			pass.Name = "Pass " + strconv.Itoa(i+1)
		}
		for _, pp := range p.Products {
			unit, msg := normalizeUnit("Rate unit", pp.RateUnit)
			if msg != "" {
				utils.RespondWithError(c, http.StatusBadRequest, msg)
				return
			}
			if pp.Rate.IsNegative() {
				utils.RespondWithError(c, http.StatusBadRequest, "Rate cannot be negative")
				return
			}
			productIDs[pp.ProductID] = true
			pass.Products = append(pass.Products, models.PassProduct{
				ProductID: pp.ProductID,
				Rate:      pp.Rate,
				RateUnit:  unit,
			})
		}
		program.Passes = append(program.Passes, pass)
	}

	ids := make([]uuid.UUID, 0, len(productIDs))
	for id := range productIDs {
		ids = append(ids, id)
	}
	var found int64
	if len(ids) > 0 {
		if err := sc.DB.Model(&models.ChemicalProduct{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
	}
	if int(found) != len(ids) {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown chemical in program")
		return
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		passes := program.Passes
		if err := tx.Omit("Passes").Create(&program).Error; err != nil {
			return err
		}
		for i := range passes {
			passes[i].ProgramID = program.ID
			products := passes[i].Products
			if err := tx.Omit("Products").Create(&passes[i]).Error; err != nil {
				return err
			}
			for j := range products {
				products[j].PassID = passes[i].ID
				if err := tx.Omit("Product").Create(&products[j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create spray program")
		return
	}

	stored, err := sc.Catalog.GetProgram(c.Request.Context(), program.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

func (sc *SprayController) GetPrograms(c *gin.Context) {
	var programs []models.SprayProgram
	if err := sc.DB.Order("name").Find(&programs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve spray programs")
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (sc *SprayController) GetProgram(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	program, err := sc.Catalog.GetProgram(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

func (sc *SprayController) DeleteProgram(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	program, err := sc.Catalog.GetProgram(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		for _, pass := range program.Passes {
			if err := tx.Where("pass_id = ?", pass.ID).Delete(&models.PassProduct{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("program_id = ?", program.ID).Delete(&models.SprayPass{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.SprayProgram{}, "id = ?", program.ID).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete spray program")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Spray program deleted successfully"})
}

// QuoteProgram handles POST /api/spray-programs/:id/quote.
func (sc *SprayController) QuoteProgram(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	quote, err := sc.Quotes.QuoteStoredProgram(c.Request.Context(), id, input.Acres)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote.Rounded())
}

// QuoteAdhoc handles POST /api/spray/quote.
func (sc *SprayController) QuoteAdhoc(c *gin.Context) {
	var input AdhocQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	quote, err := sc.Quotes.Quote(c.Request.Context(), input.Program, input.Acres, input.Tiers)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote.Rounded())
}

func (sc *SprayController) GetDiscountTiers(c *gin.Context) {
	tiers, err := sc.Catalog.ListDiscountTiers(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve discount tiers")
		return
	}
	c.JSON(http.StatusOK, tiers)
}

// ReplaceDiscountTiers handles PUT /api/discount-tiers with the full tier list.
func (sc *SprayController) ReplaceDiscountTiers(c *gin.Context) {
	var input []DiscountTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	hundred := decimal.NewFromInt(100)
	seen := map[string]bool{}
	tiers := make([]models.DiscountTier, 0, len(input))
	for _, t := range input {
		if t.MinAcres.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Minimum acres cannot be negative")
			return
		}
		if t.PercentOff.IsNegative() || t.PercentOff.GreaterThan(hundred) {
			respondDomainError(c, spray.ErrInvalidDiscountTier)
			return
		}
		key := t.MinAcres.String()
		if seen[key] {
			utils.RespondWithError(c, http.StatusBadRequest, "Duplicate minimum acres: "+key)
			return
		}
		seen[key] = true
		tiers = append(tiers, models.DiscountTier{MinAcres: t.MinAcres, PercentOff: t.PercentOff})
	}

	if err := sc.Catalog.ReplaceDiscountTiers(c.Request.Context(), tiers); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, err.Error())
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save discount tiers")
		return
	}
	c.JSON(http.StatusOK, tiers)
}
