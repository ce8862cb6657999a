package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/service"
)

// ForwarderHandler handles forwarder-facing endpoints.
type ForwarderHandler struct {
	forwarderService service.ForwarderService
}

// NewForwarderHandler creates a new ForwarderHandler.
func NewForwarderHandler(forwarderService service.ForwarderService) *ForwarderHandler {
	return &ForwarderHandler{forwarderService: forwarderService}
}

// ShowShipments handles GET /api/forwarder/show-shipments
// @Summary List shipments open for bidding
// @Tags forwarder
// @Produce json
// @Success 200 {object} map[string][]domain.Shipment "Shipments"
// @Security BearerAuth
// @Router /forwarder/show-shipments [get]
func (h *ForwarderHandler) ShowShipments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipments, err := h.forwarderService.ShowShipments(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	RespondData(c, shipments)
}

// MyProfile handles GET /api/forwarder/my-profile
// @Summary Get the forwarder's own profile
// @Tags forwarder
// @Produce json
// @Success 200 {object} domain.User "Profile"
// @Security BearerAuth
// @Router /forwarder/my-profile [get]
func (h *ForwarderHandler) MyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.forwarderService.Profile(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// RequestAccept handles PUT /api/forwarder/request-accept/:shipment_id
// @Summary Submit a direct bid on a shipment
// @Description Record quote details directly on an unassigned shipment
// @Tags forwarder
// @Accept json
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Success 200 {object} domain.Shipment "Bid recorded"
// @Failure 400 {object} ErrorBody "quote_amount is required"
// @Failure 404 {object} ErrorBody "Shipment not found or already assigned"
// @Security BearerAuth
// @Router /forwarder/request-accept/{shipment_id} [put]
func (h *ForwarderHandler) RequestAccept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found",
			"Shipment not found or already assigned to a forwarder", "shipments", true)
		return
	}

	var req struct {
		QuoteAmount *float64 `json:"quote_amount"`
		QuoteExtra  string   `json:"quote_extra"`
		QuoteTime   string   `json:"quote_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Bad Request", "quote_amount is required", "validation", true)
		return
	}
	if req.QuoteAmount == nil {
		RespondError(c, http.StatusBadRequest, "Bad Request", "quote_amount is required", "validation", true)
		return
	}

	input := service.BidInput{
		QuoteAmount: req.QuoteAmount,
		QuoteExtra:  req.QuoteExtra,
	}
	if req.QuoteTime != "" {
		// Malformed timestamps are skipped rather than failing the bid.
		if t, err := time.Parse(time.RFC3339, req.QuoteTime); err == nil {
			input.QuoteTime = &t
		}
	}

	shipment, err := h.forwarderService.SubmitBid(c.Request.Context(), userID, shipmentID, input)
	if err != nil {
		HandleError(c, "shipments", err)
		return
	}

	RespondMessage(c, "Quote accepted successfully", gin.H{"data": shipment})
}

// AllQuotes handles POST /api/forwarder/all-quotes
// @Summary List shipments this forwarder has bid on
// @Tags forwarder
// @Produce json
// @Success 200 {object} map[string][]domain.Shipment "Shipments"
// @Security BearerAuth
// @Router /forwarder/all-quotes [post]
func (h *ForwarderHandler) AllQuotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipments, err := h.forwarderService.AllQuotes(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	RespondData(c, shipments)
}

// AcceptedQuotes handles GET /api/forwarder/accepted-quotes
// @Summary List shipments won by this forwarder
// @Tags forwarder
// @Produce json
// @Success 200 {object} map[string][]domain.ShipmentWithSupplier "Won shipments with supplier details"
// @Security BearerAuth
// @Router /forwarder/accepted-quotes [get]
func (h *ForwarderHandler) AcceptedQuotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipments, err := h.forwarderService.AcceptedQuotes(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	RespondData(c, shipments)
}

// ExportAcceptedQuotes handles GET /api/forwarder/accepted-quotes/export
// @Summary Export won shipments as XLSX
// @Tags forwarder
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "XLSX workbook"
// @Security BearerAuth
// @Router /forwarder/accepted-quotes/export [get]
func (h *ForwarderHandler) ExportAcceptedQuotes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	workbook, err := h.forwarderService.ExportAcceptedQuotes(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	filename := fmt.Sprintf("accepted-quotes-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// ShowDrivers handles GET /api/forwarder/show-drivers
// @Summary List active drivers
// @Tags forwarder
// @Produce json
// @Success 200 {object} map[string][]domain.Driver "Drivers"
// @Security BearerAuth
// @Router /forwarder/show-drivers [get]
func (h *ForwarderHandler) ShowDrivers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	drivers, err := h.forwarderService.ShowDrivers(c.Request.Context(), userID)
	if err != nil {
		HandleError(c, "forwarder", err)
		return
	}

	RespondData(c, drivers)
}

// AssignDriver handles PUT /api/forwarder/assign-driver/:shipment_id/:driver_id
// @Summary Assign a driver to a shipment
// @Tags forwarder
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Param driver_id path string true "Driver ID (UUID)"
// @Success 200 {object} domain.Shipment "Driver assigned"
// @Failure 404 {object} ErrorBody "Shipment or driver not found"
// @Security BearerAuth
// @Router /forwarder/assign-driver/{shipment_id}/{driver_id} [put]
func (h *ForwarderHandler) AssignDriver(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "shipments", true)
		return
	}
	driverID, err := uuid.Parse(c.Param("driver_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Driver not found", "drivers", true)
		return
	}

	shipment, err := h.forwarderService.AssignDriver(c.Request.Context(), userID, shipmentID, driverID)
	if err != nil {
		HandleError(c, "shipments", err)
		return
	}

	c.JSON(http.StatusOK, shipment)
}
