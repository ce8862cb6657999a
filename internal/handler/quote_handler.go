package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/middleware"
	"tradeflow/internal/service"
)

// QuoteHandler handles quote lifecycle endpoints.
type QuoteHandler struct {
	quoteService service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// Create handles POST /api/shipments/:shipment_id/quotes
// @Summary Submit a quote
// @Description Submit a priced quote for a shipment as a forwarder
// @Tags quotes
// @Accept json
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Success 200 {object} domain.Quote "Quote created"
// @Failure 400 {object} ErrorBody "Invalid input"
// @Failure 404 {object} ErrorBody "Shipment not found"
// @Security BearerAuth
// @Router /shipments/{shipment_id}/quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "quotes", true)
		return
	}

	var req struct {
		Amount       float64    `json:"amount" binding:"required"`
		Currency     string     `json:"currency"`
		ValidityDate *time.Time `json:"validity_date"`
		Remarks      string     `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid input", "amount is required", "quotes", true)
		return
	}

	quote, err := h.quoteService.Create(c.Request.Context(), service.QuoteCreateInput{
		ShipmentID:   shipmentID,
		ForwarderID:  userID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ValidityDate: req.ValidityDate,
		Remarks:      req.Remarks,
	})
	if err != nil {
		HandleError(c, "quotes", err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// ListByShipment handles GET /api/shipments/:shipment_id/quotes
// @Summary List shipment quotes
// @Description List all quotes for a shipment with forwarder contact details
// @Tags quotes
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Success 200 {object} map[string][]domain.QuoteWithForwarder "Quotes"
// @Failure 404 {object} ErrorBody "Shipment not found"
// @Security BearerAuth
// @Router /shipments/{shipment_id}/quotes [get]
func (h *QuoteHandler) ListByShipment(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "quotes", true)
		return
	}

	quotes, err := h.quoteService.ListByShipment(c.Request.Context(), shipmentID)
	if err != nil {
		HandleError(c, "quotes", err)
		return
	}

	RespondData(c, quotes)
}

// Accept handles POST /api/shipments/:shipment_id/accept-quote?quote_id=
// @Summary Accept a quote
// @Description Accept a pending quote as the shipment's supplier, booking the shipment
// @Tags quotes
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Param quote_id query string true "Quote ID (UUID)"
// @Success 200 {object} domain.QuoteWithForwarder "Quote accepted"
// @Failure 400 {object} ErrorBody "Quote not pending or expired"
// @Failure 403 {object} ErrorBody "Not the shipment's supplier"
// @Failure 404 {object} ErrorBody "Shipment or quote not found"
// @Security BearerAuth
// @Router /shipments/{shipment_id}/accept-quote [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if middleware.GetRole(c) != string(domain.RoleSupplier) {
		RespondError(c, http.StatusForbidden, "Forbidden", "Only suppliers can accept quotes", "quotes", true)
		return
	}

	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "quotes", true)
		return
	}

	quoteIDRaw := c.Query("quote_id")
	if quoteIDRaw == "" {
		RespondError(c, http.StatusBadRequest, "Invalid input", "quote_id query parameter is required", "quotes", true)
		return
	}
	quoteID, err := uuid.Parse(quoteIDRaw)
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Quote not found", "quotes", true)
		return
	}

	quote, err := h.quoteService.Accept(c.Request.Context(), userID, shipmentID, quoteID)
	if err != nil {
		HandleError(c, "quotes", err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// Update handles PUT /api/quotes/:quote_id
// @Summary Update a quote
// @Description Update a quote's status and remarks as its owning forwarder
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote_id path string true "Quote ID (UUID)"
// @Success 200 {object} domain.QuoteWithForwarder "Quote updated"
// @Failure 400 {object} ErrorBody "Invalid status"
// @Failure 403 {object} ErrorBody "Not the quote's forwarder"
// @Failure 404 {object} ErrorBody "Quote not found"
// @Security BearerAuth
// @Router /quotes/{quote_id} [put]
func (h *QuoteHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if middleware.GetRole(c) != string(domain.RoleForwarder) {
		RespondError(c, http.StatusForbidden, "Forbidden", "Only forwarders can update quotes", "quotes", true)
		return
	}

	quoteID, err := uuid.Parse(c.Param("quote_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Quote not found", "quotes", true)
		return
	}

	var req struct {
		Status  string `json:"status" binding:"required"`
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid input", "status is required", "quotes", true)
		return
	}

	quote, err := h.quoteService.Update(c.Request.Context(), userID, quoteID, service.QuoteUpdateInput{
		Status:  domain.QuoteStatus(req.Status),
		Remarks: req.Remarks,
	})
	if err != nil {
		HandleError(c, "quotes", err)
		return
	}

	c.JSON(http.StatusOK, quote)
}
