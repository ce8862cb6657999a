package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/service"
)

// DocumentHandler handles document upload and extraction endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// UploadInvoice handles POST /api/documents/uploadInvoice
// @Summary Upload an invoice
// @Description Upload an invoice, extract its fields synchronously, and merge invoice details into the shipment metadata
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param shipment_id formData string true "Shipment ID (UUID)"
// @Param file formData file true "Invoice file (PDF, JPEG, or PNG)"
// @Success 200 {object} service.InvoiceUploadResult "Invoice uploaded and processed"
// @Failure 400 {object} ErrorBody "Invalid input"
// @Failure 404 {object} ErrorBody "Shipment not found"
// @Security BearerAuth
// @Router /documents/uploadInvoice [post]
func (h *DocumentHandler) UploadInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentIDRaw := c.PostForm("shipment_id")
	if shipmentIDRaw == "" {
		RespondError(c, http.StatusBadRequest, "Missing field", "shipment_id is required", "documents", true)
		return
	}
	shipmentID, err := uuid.Parse(shipmentIDRaw)
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "documents", true)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Missing file", "Invoice file is required", "documents", true)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		RespondError(c, http.StatusBadRequest, "Invalid input", "No file selected", "documents", true)
		return
	}

	result, err := h.documentService.UploadInvoice(c.Request.Context(), service.DocumentUploadInput{
		ShipmentID:   shipmentID,
		UploadedBy:   userID,
		File:         file,
		Header:       header,
		DocumentType: domain.DocumentTypeInvoice,
	})
	if err != nil {
		HandleError(c, "documents", err)
		return
	}

	RespondMessage(c, "Invoice uploaded and processed", gin.H{
		"file_url":        result.FileURL,
		"extracted_data":  result.ExtractedData,
		"invoice_details": result.InvoiceDetails,
		"confidence":      result.Confidence,
		"document_id":     result.DocumentID,
		"shipment_id":     result.ShipmentID,
	})
}

// Upload handles POST /api/documents/shipments/:shipment_id/upload
// @Summary Upload a shipment document
// @Description Upload a trade document and queue AI extraction asynchronously
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Param file formData file true "Document file (PDF, JPEG, or PNG)"
// @Param document_type formData string false "Document type (defaults to invoice)"
// @Success 200 {object} domain.Document "Document stored, extraction queued"
// @Failure 400 {object} ErrorBody "Invalid input"
// @Failure 404 {object} ErrorBody "Shipment not found"
// @Security BearerAuth
// @Router /documents/shipments/{shipment_id}/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "documents", true)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "Invalid input", "No file provided", "documents", true)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		RespondError(c, http.StatusBadRequest, "Invalid input", "No file selected", "documents", true)
		return
	}

	docType := domain.NormalizeDocumentType(c.PostForm("document_type"))

	doc, err := h.documentService.UploadDocument(c.Request.Context(), service.DocumentUploadInput{
		ShipmentID:   shipmentID,
		UploadedBy:   userID,
		File:         file,
		Header:       header,
		DocumentType: docType,
	})
	if err != nil {
		HandleError(c, "documents", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListByShipment handles GET /api/documents/shipments/:shipment_id/list
// @Summary List shipment documents
// @Tags documents
// @Produce json
// @Param shipment_id path string true "Shipment ID (UUID)"
// @Success 200 {object} map[string][]domain.Document "Documents"
// @Failure 404 {object} ErrorBody "Shipment not found"
// @Security BearerAuth
// @Router /documents/shipments/{shipment_id}/list [get]
func (h *DocumentHandler) ListByShipment(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("shipment_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Shipment not found", "documents", true)
		return
	}

	docs, err := h.documentService.ListByShipment(c.Request.Context(), shipmentID)
	if err != nil {
		HandleError(c, "documents", err)
		return
	}

	RespondData(c, docs)
}

// GetByID handles GET /api/documents/:document_id
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Param document_id path string true "Document ID (UUID)"
// @Success 200 {object} domain.Document "Document"
// @Failure 404 {object} ErrorBody "Document not found"
// @Security BearerAuth
// @Router /documents/{document_id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Document not found", "documents", true)
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, "documents", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Autofill handles POST /api/documents/:document_id/autofill
// @Summary Auto-fill shipment fields from a document
// @Description Copy extracted document fields onto the owning shipment
// @Tags documents
// @Accept json
// @Produce json
// @Param document_id path string true "Document ID (UUID)"
// @Param request body object false "Optional fields list"
// @Success 200 {object} service.AutofillResult "Fields updated"
// @Failure 400 {object} ErrorBody "Document has no extracted data"
// @Failure 404 {object} ErrorBody "Document not found"
// @Security BearerAuth
// @Router /documents/{document_id}/autofill [post]
func (h *DocumentHandler) Autofill(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("document_id"))
	if err != nil {
		RespondError(c, http.StatusNotFound, "Not Found", "Document not found", "documents", true)
		return
	}

	var req struct {
		Fields []string `json:"fields"`
	}
	// An empty or absent body means the default field set.
	_ = c.ShouldBindJSON(&req)

	result, err := h.documentService.Autofill(c.Request.Context(), docID, req.Fields)
	if err != nil {
		HandleError(c, "documents", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Extract handles POST /api/documents/:document_id/extract
// @Summary Re-extract a stored document
// @Tags documents
// @Produce json
// @Failure 501 {object} ErrorBody "Not implemented"
// @Security BearerAuth
// @Router /documents/{document_id}/extract [post]
func (h *DocumentHandler) Extract(c *gin.Context) {
	// Re-extraction would need to pull the file back from object storage.
	RespondError(c, http.StatusNotImplemented, "Not Implemented",
		"Extraction from stored files not implemented", "documents", true)
}
