package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrShipmentNotFound    = errors.New("shipment not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrQuoteNotFound       = errors.New("quote not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNoExtractedData     = errors.New("document has no extracted data")
	ErrQuoteNotPending     = errors.New("quote is not pending")
	ErrQuoteExpired        = errors.New("quote has expired")
	ErrForwarderAssigned   = errors.New("shipment already assigned to a forwarder")
	ErrInvalidQuoteStatus  = errors.New("status must be pending or rejected")
	ErrMissingQuoteAmount  = errors.New("quote_amount is required")
	ErrDatabaseUnavailable = errors.New("database unavailable")
)
