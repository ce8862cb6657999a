package domain

// FileType represents the allowed file types for document upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines the role of a platform user.
type UserRole string

const (
	RoleSupplier  UserRole = "supplier"
	RoleForwarder UserRole = "forwarder"
	RoleAdmin     UserRole = "admin"
)

// ShipmentStatus represents the lifecycle of a shipment.
type ShipmentStatus string

const (
	ShipmentStatusDraft        ShipmentStatus = "draft"
	ShipmentStatusPendingQuote ShipmentStatus = "pending_quote"
	ShipmentStatusQuoted       ShipmentStatus = "quoted"
	ShipmentStatusBooked       ShipmentStatus = "booked"
	ShipmentStatusInTransit    ShipmentStatus = "in_transit"
	ShipmentStatusDelivered    ShipmentStatus = "delivered"
	ShipmentStatusCancelled    ShipmentStatus = "cancelled"
)

// QuoteStatus represents the lifecycle of a forwarder quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// DocumentType classifies an uploaded trade document.
type DocumentType string

const (
	DocumentTypeInvoice             DocumentType = "invoice"
	DocumentTypePackingList         DocumentType = "packing_list"
	DocumentTypeCommercialInvoice   DocumentType = "commercial_invoice"
	DocumentTypeCertificateOfOrigin DocumentType = "certificate_of_origin"
	DocumentTypeBillOfLading        DocumentType = "bill_of_lading"
	DocumentTypeHouseBL             DocumentType = "house_bl"
	DocumentTypeMasterBL            DocumentType = "master_bl"
	DocumentTypeTelexRelease        DocumentType = "telex_release"
	DocumentTypeOther               DocumentType = "other"
)

// ValidDocumentTypes is the set of accepted document_type values.
var ValidDocumentTypes = map[DocumentType]bool{
	DocumentTypeInvoice:             true,
	DocumentTypePackingList:         true,
	DocumentTypeCommercialInvoice:   true,
	DocumentTypeCertificateOfOrigin: true,
	DocumentTypeBillOfLading:        true,
	DocumentTypeHouseBL:             true,
	DocumentTypeMasterBL:            true,
	DocumentTypeTelexRelease:        true,
	DocumentTypeOther:               true,
}

// NormalizeDocumentType maps unknown document_type values to the invoice
// default. The tolerant fallback is intentional: existing clients send free-form
// values and expect the upload to proceed.
func NormalizeDocumentType(raw string) DocumentType {
	dt := DocumentType(raw)
	if ValidDocumentTypes[dt] {
		return dt
	}
	return DocumentTypeInvoice
}

// ExtractionStatus represents the state of an extraction job.
type ExtractionStatus string

const (
	ExtractionStatusPending   ExtractionStatus = "pending"
	ExtractionStatusCompleted ExtractionStatus = "completed"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)

// ReviewThreshold is the confidence score below which extracted data must be
// reviewed by a human before it is trusted.
const ReviewThreshold = 0.8

// NoExtractionConfidence is the sentinel confidence recorded when the
// extraction service returned nothing.
const NoExtractionConfidence = 0.0

// NeedsReview reports whether a document with the given confidence score
// requires human review.
func NeedsReview(confidence float64) bool {
	return confidence < ReviewThreshold
}
