package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User represents a platform user (supplier, forwarder, or admin).
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Role        UserRole  `db:"role" json:"role"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Driver represents a driver a forwarder can assign to a booked shipment.
type Driver struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Phone         string    `db:"phone" json:"phone"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	VehicleNumber string    `db:"vehicle_number" json:"vehicle_number"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Shipment is a logistics order tracked through quoting, booking, and
// fulfillment. Physical attributes may be overwritten by document auto-fill;
// quote_* fields hold the bid a forwarder submitted directly on the shipment.
type Shipment struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	SupplierID       uuid.UUID       `db:"supplier_id" json:"supplier_id"`
	ForwarderID      *uuid.UUID      `db:"forwarder_id" json:"forwarder_id"`
	AssignedDriverID *uuid.UUID      `db:"assigned_driver_id" json:"assigned_driver_id"`
	Status           ShipmentStatus  `db:"status" json:"status"`
	Origin           string          `db:"origin" json:"origin"`
	Destination      string          `db:"destination" json:"destination"`
	GrossWeightKg    *float64        `db:"gross_weight_kg" json:"gross_weight_kg"`
	NetWeightKg      *float64        `db:"net_weight_kg" json:"net_weight_kg"`
	VolumeCbm        *float64        `db:"volume_cbm" json:"volume_cbm"`
	TotalPackages    *int            `db:"total_packages" json:"total_packages"`
	HSCode           string          `db:"hs_code" json:"hs_code"`
	GoodsDescription string          `db:"goods_description" json:"goods_description"`
	QuoteAmount      *float64        `db:"quote_amount" json:"quote_amount"`
	QuoteStatus      string          `db:"quote_status" json:"quote_status"`
	QuoteForwarderID *uuid.UUID      `db:"quote_forwarder_id" json:"quote_forwarder_id"`
	QuoteExtra       string          `db:"quote_extra" json:"quote_extra"`
	QuoteTime        *time.Time      `db:"quote_time" json:"quote_time"`
	Metadata         json.RawMessage `db:"metadata" json:"metadata"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Document stores metadata and extraction results for an uploaded trade
// document. needs_review is derived from confidence_score at write time.
type Document struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	ShipmentID       uuid.UUID       `db:"shipment_id" json:"shipment_id"`
	UploadedBy       uuid.UUID       `db:"uploaded_by" json:"uploaded_by"`
	Type             DocumentType    `db:"type" json:"type"`
	FileName         string          `db:"file_name" json:"file_name"`
	FileURL          string          `db:"file_url" json:"file_url"`
	FileSize         int64           `db:"file_size" json:"file_size"`
	MimeType         string          `db:"mime_type" json:"mime_type"`
	ExtractedData    json.RawMessage `db:"extracted_data" json:"extracted_data"`
	ConfidenceScore  float64         `db:"confidence_score" json:"confidence_score"`
	ExtractionMethod string          `db:"extraction_method" json:"extraction_method"`
	NeedsReview      bool            `db:"needs_review" json:"needs_review"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// ExtractionJob tracks the extraction lifecycle of a single document.
type ExtractionJob struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	DocumentID   uuid.UUID        `db:"document_id" json:"document_id"`
	Status       ExtractionStatus `db:"status" json:"status"`
	ErrorMessage string           `db:"error_message" json:"error_message"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Quote is a forwarder's priced bid to fulfill a shipment.
type Quote struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	ShipmentID   uuid.UUID   `db:"shipment_id" json:"shipment_id"`
	ForwarderID  uuid.UUID   `db:"forwarder_id" json:"forwarder_id"`
	Amount       float64     `db:"amount" json:"amount"`
	Currency     string      `db:"currency" json:"currency"`
	ValidityDate *time.Time  `db:"validity_date" json:"validity_date"`
	Status       QuoteStatus `db:"status" json:"status"`
	Remarks      string      `db:"remarks" json:"remarks"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// QuoteWithForwarder is a quote joined with the bidding forwarder's contact
// details for supplier-facing listings.
type QuoteWithForwarder struct {
	Quote
	ForwarderName    string `db:"forwarder_name" json:"forwarder_name"`
	ForwarderEmail   string `db:"forwarder_email" json:"forwarder_email"`
	ForwarderCompany string `db:"forwarder_company" json:"forwarder_company"`
}

// SupplierDetails is a snapshot of the counterpart supplier's contact fields,
// attached to won-bid listings.
type SupplierDetails struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

// ShipmentWithSupplier pairs a won shipment with its supplier snapshot.
type ShipmentWithSupplier struct {
	Shipment
	SupplierDetails *SupplierDetails `json:"supplier_details,omitempty"`
}
