package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quickbill-api/pkg/format"
)

// CatalogHandler serves the select lists of the invoice form
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetCatalog returns countries, tax rates and the currency
// @Summary Catalog
// @Tags catalog
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	countries := make([]gin.H, 0, len(enum.Countries()))
	for _, country := range enum.Countries() {
		countries = append(countries, gin.H{"id": int(country), "name": country.String()})
	}

	response.OK(c, "Catalog retrieved successfully", gin.H{
		"countries":        countries,
		"tax_rates":        enum.TaxRates(),
		"default_tax_rate": int(enum.DefaultTaxRate),
		"currency":         format.CurrencyCode(),
	})
}
