package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tradeflow/internal/domain"
	"tradeflow/internal/handler"
)

func newDocumentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	// These tests only exercise paths that fail before reaching the service.
	h := handler.NewDocumentHandler(nil)

	r := gin.New()
	r.Use(fakeAuth(uuid.New(), domain.RoleSupplier))
	r.POST("/api/documents/uploadInvoice", h.UploadInvoice)
	r.GET("/api/documents/:document_id", h.GetByID)
	r.POST("/api/documents/:document_id/extract", h.Extract)
	return r
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		assert.NoError(t, w.WriteField(k, v))
	}
	assert.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestDocumentHandler_UploadInvoice_MissingShipmentID(t *testing.T) {
	r := newDocumentRouter()

	body, contentType := multipartBody(t, map[string]string{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/uploadInvoice", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "shipment_id is required")
	assert.Contains(t, w.Body.String(), `"safe_for_demo":true`)
}

func TestDocumentHandler_UploadInvoice_MissingFile(t *testing.T) {
	r := newDocumentRouter()

	body, contentType := multipartBody(t, map[string]string{"shipment_id": uuid.NewString()})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/uploadInvoice", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invoice file is required")
}

func TestDocumentHandler_UploadInvoice_BadShipmentID(t *testing.T) {
	r := newDocumentRouter()

	body, contentType := multipartBody(t, map[string]string{"shipment_id": "not-a-uuid"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/uploadInvoice", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Shipment not found")
}

func TestDocumentHandler_GetByID_BadUUID(t *testing.T) {
	r := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Document not found")
}

func TestDocumentHandler_Extract_NotImplemented(t *testing.T) {
	r := newDocumentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+uuid.NewString()+"/extract", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Contains(t, w.Body.String(), "Extraction from stored files not implemented")
}
