package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"m77ag-backend/models"
	"m77ag-backend/services"
	"m77ag-backend/spray"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCatalog struct{}

func (stubCatalog) GetProgram(ctx context.Context, id uuid.UUID) (*models.SprayProgram, error) {
	return nil, nil
}

func (stubCatalog) ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error) {
	return []models.DiscountTier{{MinAcres: decimal.NewFromInt(500), PercentOff: decimal.NewFromInt(7)}}, nil
}

func setupSprayRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	sc := &SprayController{Quotes: services.NewSprayQuoteService(stubCatalog{}, zap.NewNop())}
	r := gin.New()
	r.POST("/api/spray/quote", sc.QuoteAdhoc)
	return r
}

func glyphosateProgram(rateUnit string) gin.H {
	return gin.H{
		"name": "Soybean standard",
		"passes": []gin.H{
			{"name": "Burndown", "products": []gin.H{{
				"product": gin.H{
					"name": "Glyphosate 5.4", "price": "14.95", "priceUnit": "gal",
					"containers": []gin.H{{"label": "105 gal shuttle", "size": "105", "unit": "gal"}},
				},
				"rate": "32", "rateUnit": rateUnit,
			}}},
		},
	}
}

func TestQuoteAdhocEndpoint(t *testing.T) {
	r := setupSprayRouter()

	w := doJSON(r, http.MethodPost, "/api/spray/quote", gin.H{"program": glyphosateProgram("oz"), "acres": "500"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var quote spray.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.True(t, quote.PerAcrePrice.Equal(decimal.RequireFromString("3.74")))
	assert.True(t, quote.BaseTotal.Equal(decimal.RequireFromString("1868.75")))
	// 7% stored tier: 130.8125 off, rounded for display.
	assert.True(t, quote.DiscountAmount.Equal(decimal.RequireFromString("130.81")))
	assert.True(t, quote.FinalTotal.Equal(decimal.RequireFromString("1737.94")))
	require.Len(t, quote.Purchases, 1)
	assert.Equal(t, int64(2), quote.Purchases[0].Plan.Containers)
}

func TestQuoteAdhocEndpointErrors(t *testing.T) {
	r := setupSprayRouter()

	w := doJSON(r, http.MethodPost, "/api/spray/quote", gin.H{"program": glyphosateProgram("lb"), "acres": "500"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/api/spray/quote", gin.H{"program": glyphosateProgram("oz"), "acres": "-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/api/spray/quote", gin.H{
		"program": glyphosateProgram("oz"), "acres": "10",
		"tiers": []gin.H{{"minAcres": "1", "percentOff": "150"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
