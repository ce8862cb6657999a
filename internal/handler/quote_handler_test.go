package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tradeflow/internal/domain"
	"tradeflow/internal/handler"
	"tradeflow/internal/middleware"
)

// fakeAuth injects an authenticated user without a real token.
func fakeAuth(userID uuid.UUID, role domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyRole, string(role))
		c.Next()
	}
}

func newQuoteRouter(role domain.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// These tests only exercise paths that fail before reaching the service.
	h := handler.NewQuoteHandler(nil)

	r := gin.New()
	r.Use(fakeAuth(uuid.New(), role))
	r.POST("/api/shipments/:shipment_id/accept-quote", h.Accept)
	r.GET("/api/shipments/:shipment_id/quotes", h.ListByShipment)
	r.PUT("/api/quotes/:quote_id", h.Update)
	return r
}

func TestQuoteHandler_Accept_MissingQuoteID(t *testing.T) {
	r := newQuoteRouter(domain.RoleSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shipments/"+uuid.NewString()+"/accept-quote", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "quote_id query parameter is required")
	assert.Contains(t, w.Body.String(), `"module":"quotes"`)
}

func TestQuoteHandler_Accept_ForwarderForbidden(t *testing.T) {
	r := newQuoteRouter(domain.RoleForwarder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/api/shipments/"+uuid.NewString()+"/accept-quote?quote_id="+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Only suppliers can accept quotes")
}

func TestQuoteHandler_Accept_BadShipmentID(t *testing.T) {
	r := newQuoteRouter(domain.RoleSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shipments/not-a-uuid/accept-quote?quote_id="+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Shipment not found")
}

func TestQuoteHandler_ListByShipment_BadUUID(t *testing.T) {
	r := newQuoteRouter(domain.RoleSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/shipments/123/quotes", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandler_Update_SupplierForbidden(t *testing.T) {
	r := newQuoteRouter(domain.RoleSupplier)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/quotes/"+uuid.NewString(),
		strings.NewReader(`{"status":"rejected"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Only forwarders can update quotes")
}

func TestQuoteHandler_Update_MissingStatus(t *testing.T) {
	r := newQuoteRouter(domain.RoleForwarder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/quotes/"+uuid.NewString(),
		strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "status is required")
}
