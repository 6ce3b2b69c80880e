// controllers/chemical.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"m77ag-backend/config"
	"m77ag-backend/models"
	"m77ag-backend/spray"
	"m77ag-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ContainerVariantInput struct {
	Label string          `json:"label"`
	Size  decimal.Decimal `json:"size"`
	Unit  string          `json:"unit" binding:"required"`
}

type CreateChemicalInput struct {
	Name          string                  `json:"name" binding:"required"`
	PricePerUnit  decimal.Decimal         `json:"pricePerUnit"`
	PriceUnit     string                  `json:"priceUnit" binding:"required"`
	ContainerSize decimal.Decimal         `json:"containerSize"`
	ContainerUnit string                  `json:"containerUnit"`
	Variants      []ContainerVariantInput `json:"variants"`
}

type UpdateChemicalInput struct {
	Name          *string                  `json:"name"`
	PricePerUnit  *decimal.Decimal         `json:"pricePerUnit"`
	PriceUnit     *string                  `json:"priceUnit"`
	ContainerSize *decimal.Decimal         `json:"containerSize"`
	ContainerUnit *string                  `json:"containerUnit"`
	IsActive      *bool                    `json:"isActive"`
	Variants      *[]ContainerVariantInput `json:"variants"`
}

// normalizeUnit returns the canonical unit or an error message.
func normalizeUnit(field, unit string) (string, string) {
	u, ok := spray.ParseUnit(unit)
	if !ok {
		return "", field + " must be one of oz, gal, lb"
	}
	return string(u), ""
}

func buildVariants(inputs []ContainerVariantInput) ([]models.ContainerVariant, string) {
	variants := make([]models.ContainerVariant, 0, len(inputs))
	for _, v := range inputs {
		if !v.Size.IsPositive() {
			return nil, "Container size must be greater than zero"
		}
		unit, msg := normalizeUnit("Container unit", v.Unit)
		if msg != "" {
			return nil, msg
		}
		variants = append(variants, models.ContainerVariant{Label: v.Label, Size: v.Size, Unit: unit})
	}
	return variants, ""
}

func CreateChemical(c *gin.Context) {
	var input CreateChemicalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.PricePerUnit.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	priceUnit, msg := normalizeUnit("Price unit", input.PriceUnit)
	if msg != "" {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}
	containerUnit := priceUnit
	if input.ContainerUnit != "" {
		if containerUnit, msg = normalizeUnit("Container unit", input.ContainerUnit); msg != "" {
			utils.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
	}
	variants, msg := buildVariants(input.Variants)
	if msg != "" {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}

	product := models.ChemicalProduct{
		Name:          strings.TrimSpace(input.Name),
		PricePerUnit:  input.PricePerUnit,
		PriceUnit:     priceUnit,
		ContainerSize: input.ContainerSize,
		ContainerUnit: containerUnit,
		IsActive:      true,
		Variants:      variants,
	}

	if err := config.DB.Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Chemical with this name already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create chemical")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetChemicals lists the catalog. ?active=true hides retired products.
func GetChemicals(c *gin.Context) {
	query := config.DB.Preload("Variants")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var products []models.ChemicalProduct
	if err := query.Order("name").Find(&products).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve chemicals")
		return
	}
	c.JSON(http.StatusOK, products)
}

func GetChemical(c *gin.Context) {
	product, ok := loadChemical(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, product)
}

func UpdateChemical(c *gin.Context) {
	product, ok := loadChemical(c)
	if !ok {
		return
	}

	var input UpdateChemicalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var msg string
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.PricePerUnit != nil {
		if input.PricePerUnit.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		product.PricePerUnit = *input.PricePerUnit
	}
	if input.PriceUnit != nil {
		if product.PriceUnit, msg = normalizeUnit("Price unit", *input.PriceUnit); msg != "" {
			utils.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
	}
	if input.ContainerSize != nil {
		product.ContainerSize = *input.ContainerSize
	}
	if input.ContainerUnit != nil {
		if product.ContainerUnit, msg = normalizeUnit("Container unit", *input.ContainerUnit); msg != "" {
			utils.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	var variants []models.ContainerVariant
	if input.Variants != nil {
		if variants, msg = buildVariants(*input.Variants); msg != "" {
			utils.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Save(product).Error; err != nil {
			return err
		}
		if input.Variants == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ContainerVariant{}).Error; err != nil {
			return err
		}
		for i := range variants {
			variants[i].ProductID = product.ID
		}
		if len(variants) > 0 {
			if err := tx.Create(&variants).Error; err != nil {
				return err
			}
		}
		product.Variants = variants
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Chemical with this name already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update chemical")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteChemical removes an unused product. Products referenced by a
// program should be deactivated instead.
func DeleteChemical(c *gin.Context) {
	product, ok := loadChemical(c)
	if !ok {
		return
	}

	var uses int64
	if err := config.DB.Model(&models.PassProduct{}).Where("product_id = ?", product.ID).Count(&uses).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if uses > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Chemical is used by a spray program; deactivate it instead")
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ContainerVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete chemical")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chemical deleted successfully"})
}

func loadChemical(c *gin.Context) (*models.ChemicalProduct, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}

	var product models.ChemicalProduct
	if err := config.DB.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Chemical not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &product, true
}
