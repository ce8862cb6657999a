package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

// DocumentUploadInput is the DTO for document upload requests.
type DocumentUploadInput struct {
	ShipmentID   uuid.UUID
	UploadedBy   uuid.UUID
	File         multipart.File
	Header       *multipart.FileHeader
	DocumentType domain.DocumentType
}

// InvoiceUploadResult is the payload returned by the synchronous invoice
// upload flow.
type InvoiceUploadResult struct {
	FileURL        string                 `json:"file_url"`
	ExtractedData  map[string]interface{} `json:"extracted_data"`
	InvoiceDetails map[string]interface{} `json:"invoice_details"`
	Confidence     float64                `json:"confidence"`
	DocumentID     uuid.UUID              `json:"document_id"`
	ShipmentID     uuid.UUID              `json:"shipment_id"`
}

// DocumentService defines the document management contract.
type DocumentService interface {
	// UploadInvoice stores an invoice, extracts its fields synchronously, and
	// merges invoice details into the shipment metadata.
	UploadInvoice(ctx context.Context, input DocumentUploadInput) (*InvoiceUploadResult, error)
	// UploadDocument stores a document and queues extraction asynchronously.
	// The returned document has no extraction results yet.
	UploadDocument(ctx context.Context, input DocumentUploadInput) (*domain.Document, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.Document, error)
	GetByID(ctx context.Context, documentID uuid.UUID) (*domain.Document, error)
	// Autofill copies extracted document fields onto the owning shipment.
	Autofill(ctx context.Context, documentID uuid.UUID, fields []string) (*AutofillResult, error)
	// AttachQueue wires the extraction worker pool into the service after
	// construction; the worker needs the service as its processor.
	AttachQueue(queue ExtractionQueue)
	ExtractionProcessor
}

type documentService struct {
	docRepo      port.DocumentRepository
	jobRepo      port.ExtractionJobRepository
	shipmentRepo port.ShipmentRepository
	storage      port.ObjectStorage
	extractor    port.DocumentExtractor
	queue        ExtractionQueue
	s3cfg        *config.S3Config
	uploadCfg    *config.UploadConfig
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	jobRepo port.ExtractionJobRepository,
	shipmentRepo port.ShipmentRepository,
	storage port.ObjectStorage,
	extractor port.DocumentExtractor,
	s3cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
) DocumentService {
	return &documentService{
		docRepo:      docRepo,
		jobRepo:      jobRepo,
		shipmentRepo: shipmentRepo,
		storage:      storage,
		extractor:    extractor,
		s3cfg:        s3cfg,
		uploadCfg:    uploadCfg,
	}
}

// AttachQueue wires the extraction worker pool into the service.
func (s *documentService) AttachQueue(queue ExtractionQueue) {
	s.queue = queue
}

func (s *documentService) UploadInvoice(ctx context.Context, input DocumentUploadInput) (*InvoiceUploadResult, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, input.ShipmentID)
	if err != nil {
		return nil, err
	}

	tempPath, contentType, err := s.saveTempFile(input)
	if err != nil {
		return nil, err
	}
	// The temp file never outlives the synchronous flow.
	defer removeTempFile(tempPath)

	fileURL, err := s.uploadToStorage(ctx, input, tempPath, contentType)
	if err != nil {
		return nil, err
	}

	extracted, confidence, method := s.runExtraction(ctx, tempPath, contentType, domain.DocumentTypeInvoice)

	invoiceData := buildInvoiceData(extracted)
	invoiceDetails := buildInvoiceDetails(extracted, confidence)

	if err := s.mergeInvoiceDetails(ctx, shipment, invoiceDetails); err != nil {
		return nil, err
	}

	extractedJSON, err := json.Marshal(invoiceData)
	if err != nil {
		return nil, fmt.Errorf("marshaling extracted data: %w", err)
	}

	doc := &domain.Document{
		ID:               uuid.New(),
		ShipmentID:       shipment.ID,
		UploadedBy:       input.UploadedBy,
		Type:             domain.DocumentTypeInvoice,
		FileName:         sanitizeFilename(input.Header.Filename),
		FileURL:          fileURL,
		FileSize:         input.Header.Size,
		MimeType:         contentType,
		ExtractedData:    extractedJSON,
		ConfidenceScore:  confidence,
		ExtractionMethod: method,
		NeedsReview:      domain.NeedsReview(confidence),
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	// A successful call that extracted nothing is still a failed job.
	jobStatus := domain.ExtractionStatusCompleted
	if len(extracted) == 0 {
		jobStatus = domain.ExtractionStatusFailed
	}
	job := &domain.ExtractionJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		Status:     jobStatus,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	return &InvoiceUploadResult{
		FileURL:        fileURL,
		ExtractedData:  invoiceData,
		InvoiceDetails: invoiceDetails,
		Confidence:     confidence,
		DocumentID:     doc.ID,
		ShipmentID:     shipment.ID,
	}, nil
}

func (s *documentService) UploadDocument(ctx context.Context, input DocumentUploadInput) (*domain.Document, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, input.ShipmentID)
	if err != nil {
		return nil, err
	}

	tempPath, contentType, err := s.saveTempFile(input)
	if err != nil {
		return nil, err
	}

	fileURL, err := s.uploadToStorage(ctx, input, tempPath, contentType)
	if err != nil {
		removeTempFile(tempPath)
		return nil, err
	}

	doc := &domain.Document{
		ID:              uuid.New(),
		ShipmentID:      shipment.ID,
		UploadedBy:      input.UploadedBy,
		Type:            input.DocumentType,
		FileName:        sanitizeFilename(input.Header.Filename),
		FileURL:         fileURL,
		FileSize:        input.Header.Size,
		MimeType:        contentType,
		ConfidenceScore: domain.NoExtractionConfidence,
		NeedsReview:     true,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		removeTempFile(tempPath)
		return nil, err
	}

	job := &domain.ExtractionJob{
		ID:         uuid.New(),
		DocumentID: doc.ID,
		Status:     domain.ExtractionStatusPending,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		removeTempFile(tempPath)
		return nil, err
	}

	// On enqueue the worker takes ownership of the temp file. A full queue is
	// recorded on the job, not reported to the uploader.
	if s.queue == nil || !s.queue.Enqueue(ExtractionTask{DocumentID: doc.ID, FilePath: tempPath}) {
		log.Printf("documentService.UploadDocument: extraction queue full for document %s", doc.ID)
		if err := s.jobRepo.UpdateStatus(ctx, job.ID, domain.ExtractionStatusFailed, "extraction queue full"); err != nil {
			log.Printf("documentService.UploadDocument: marking job failed: %v", err)
		}
		removeTempFile(tempPath)
	}

	return doc, nil
}

func (s *documentService) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.Document, error) {
	if _, err := s.shipmentRepo.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.docRepo.ListByShipment(ctx, shipmentID)
}

func (s *documentService) GetByID(ctx context.Context, documentID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, documentID)
}

// ProcessExtraction runs the extraction for a queued document and records the
// outcome on the document and its job. Failures are job-recorded, never
// propagated: the uploader already got its response.
func (s *documentService) ProcessExtraction(ctx context.Context, documentID uuid.UUID, filePath string) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		log.Printf("documentService.ProcessExtraction: loading document %s: %v", documentID, err)
		return
	}

	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		FilePath:     filePath,
		ContentType:  doc.MimeType,
		DocumentType: doc.Type,
	})
	if err != nil {
		log.Printf("documentService.ProcessExtraction: extracting document %s: %v", documentID, err)
		s.recordJobFailure(ctx, documentID, err.Error())
		return
	}

	extractedJSON, err := json.Marshal(out.Fields)
	if err != nil {
		log.Printf("documentService.ProcessExtraction: marshaling fields for %s: %v", documentID, err)
		s.recordJobFailure(ctx, documentID, err.Error())
		return
	}

	doc.ExtractedData = extractedJSON
	doc.ConfidenceScore = out.Confidence
	doc.ExtractionMethod = out.Method
	doc.NeedsReview = domain.NeedsReview(out.Confidence)
	if err := s.docRepo.UpdateExtraction(ctx, doc); err != nil {
		log.Printf("documentService.ProcessExtraction: updating document %s: %v", documentID, err)
		s.recordJobFailure(ctx, documentID, err.Error())
		return
	}

	jobStatus := domain.ExtractionStatusCompleted
	if len(out.Fields) == 0 {
		jobStatus = domain.ExtractionStatusFailed
	}
	s.updateJobStatus(ctx, documentID, jobStatus, "")
}

// DiscardExtraction marks a queued document's job failed and removes its temp
// file. Called by the worker pool for tasks still queued at shutdown.
func (s *documentService) DiscardExtraction(ctx context.Context, documentID uuid.UUID, filePath string) {
	s.recordJobFailure(ctx, documentID, "extraction worker stopped before processing")
	removeTempFile(filePath)
}

func (s *documentService) recordJobFailure(ctx context.Context, documentID uuid.UUID, reason string) {
	s.updateJobStatus(ctx, documentID, domain.ExtractionStatusFailed, reason)
}

func (s *documentService) updateJobStatus(ctx context.Context, documentID uuid.UUID, status domain.ExtractionStatus, errorMessage string) {
	job, err := s.jobRepo.GetByDocumentID(ctx, documentID)
	if err != nil {
		log.Printf("documentService: loading job for document %s: %v", documentID, err)
		return
	}
	if err := s.jobRepo.UpdateStatus(ctx, job.ID, status, errorMessage); err != nil {
		log.Printf("documentService: updating job for document %s: %v", documentID, err)
	}
}

// saveTempFile validates the upload and writes it to a local temp file.
// Returns the temp path and the file's content type.
func (s *documentService) saveTempFile(input DocumentUploadInput) (string, string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return "", "", domain.ErrUnsupportedFileType
	}

	maxBytes := s.uploadCfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return "", "", domain.ErrFileTooLarge
	}

	contentType := input.Header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = domain.AllowedFileTypes[fileType]
	}

	tempDir := s.uploadCfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating temp dir: %w", err)
	}

	tempPath := filepath.Join(tempDir, fmt.Sprintf("%s_%s", uuid.New(), sanitizeFilename(input.Header.Filename)))
	dst, err := os.Create(tempPath)
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(dst, input.File); err != nil {
		dst.Close()
		removeTempFile(tempPath)
		return "", "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		removeTempFile(tempPath)
		return "", "", fmt.Errorf("closing temp file: %w", err)
	}

	return tempPath, contentType, nil
}

func (s *documentService) uploadToStorage(ctx context.Context, input DocumentUploadInput, tempPath, contentType string) (string, error) {
	f, err := os.Open(tempPath)
	if err != nil {
		return "", fmt.Errorf("opening temp file: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("shipments/%s/documents/%s_%s",
		input.ShipmentID, uuid.New(), sanitizeFilename(input.Header.Filename))

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        f,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("documentService.uploadToStorage: %v", err)
		return "", domain.ErrUploadFailed
	}
	return out.Location, nil
}

func (s *documentService) runExtraction(ctx context.Context, tempPath, contentType string, docType domain.DocumentType) (map[string]interface{}, float64, string) {
	out, err := s.extractor.Extract(ctx, port.ExtractInput{
		FilePath:     tempPath,
		ContentType:  contentType,
		DocumentType: docType,
	})
	if err != nil {
		log.Printf("documentService.runExtraction: %v", err)
		return nil, domain.NoExtractionConfidence, ""
	}
	return out.Fields, out.Confidence, out.Method
}

func (s *documentService) mergeInvoiceDetails(ctx context.Context, shipment *domain.Shipment, invoiceDetails map[string]interface{}) error {
	metadata := map[string]interface{}{}
	if len(shipment.Metadata) > 0 {
		if err := json.Unmarshal(shipment.Metadata, &metadata); err != nil {
			// Corrupt metadata is replaced rather than failing the upload.
			log.Printf("documentService.mergeInvoiceDetails: resetting unreadable metadata for shipment %s: %v", shipment.ID, err)
			metadata = map[string]interface{}{}
		}
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["invoice_details"] = invoiceDetails

	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshaling shipment metadata: %w", err)
	}
	shipment.Metadata = raw
	return s.shipmentRepo.Update(ctx, shipment)
}

// buildInvoiceData shapes the extracted fields into the document's stored
// extracted_data payload. All lookups tolerate a nil fields map.
func buildInvoiceData(fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"invoice_number": fields["invoice_number"],
		"invoice_date":   fields["date"],
		"buyer_name":     fields["buyer_name"],
		"seller_name":    fields["seller_name"],
		"hsn_code":       fields["hs_code"],
		"total_amount":   fields["amount"],
		"currency":       fields["currency"],
		"tax_amount":     fields["tax_amount"],
		"extracted_raw":  fields,
	}
}

// buildInvoiceDetails shapes the extracted fields into the invoice_details
// block merged into the shipment metadata.
func buildInvoiceDetails(fields map[string]interface{}, confidence float64) map[string]interface{} {
	companyName := fields["company_name"]
	if companyName == nil {
		companyName = fields["seller_name"]
	}
	return map[string]interface{}{
		"unique_invoice_number": fields["invoice_number"],
		"company_name":          companyName,
		"buyer_company_name":    fields["buyer_name"],
		"seller_company_name":   fields["seller_name"],
		"summary":               fields["summary"],
		"date_of_invoice":       fields["date"],
		"payment_terms":         fields["payment_terms"],
		"due_date":              fields["due_date"],
		"po_number":             fields["po_number"],
		"total_amount":          fields["amount"],
		"currency":              fields["currency"],
		"tax_amount":            fields["tax_amount"],
		"items":                 fields["items"],
		"notes":                 fields["notes"],
		"extracted_at":          time.Now().UTC().Format(time.RFC3339),
		"confidence":            confidence,
	}
}

// sanitizeFilename strips path components and characters unsafe for storage
// keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}

func removeTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("documentService: removing temp file %s: %v", path, err)
	}
}
