package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tradeflow/internal/config"
	"tradeflow/internal/domain"
	"tradeflow/internal/port"
	"tradeflow/internal/service"
	"tradeflow/mocks"
)

// fakeFile adapts a bytes.Reader to multipart.File for upload tests.
type fakeFile struct {
	*bytes.Reader
}

func (fakeFile) Close() error { return nil }

func newUpload(shipmentID uuid.UUID, filename, contentType string, body []byte) service.DocumentUploadInput {
	header := &multipart.FileHeader{
		Filename: filename,
		Size:     int64(len(body)),
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		header.Header.Set("Content-Type", contentType)
	}
	return service.DocumentUploadInput{
		ShipmentID:   shipmentID,
		UploadedBy:   uuid.New(),
		File:         fakeFile{bytes.NewReader(body)},
		Header:       header,
		DocumentType: domain.DocumentTypeInvoice,
	}
}

type documentTestDeps struct {
	docRepo      *mocks.MockDocumentRepo
	jobRepo      *mocks.MockExtractionJobRepo
	shipmentRepo *mocks.MockShipmentRepo
	storage      *mocks.MockObjectStorage
	extractor    *mocks.MockDocumentExtractor
	svc          service.DocumentService
}

func newDocumentService(t *testing.T) documentTestDeps {
	deps := documentTestDeps{
		docRepo:      new(mocks.MockDocumentRepo),
		jobRepo:      new(mocks.MockExtractionJobRepo),
		shipmentRepo: new(mocks.MockShipmentRepo),
		storage:      new(mocks.MockObjectStorage),
		extractor:    new(mocks.MockDocumentExtractor),
	}
	deps.svc = service.NewDocumentService(
		deps.docRepo,
		deps.jobRepo,
		deps.shipmentRepo,
		deps.storage,
		deps.extractor,
		&config.S3Config{Bucket: "test-bucket"},
		&config.UploadConfig{TempDir: t.TempDir(), MaxFileSizeMB: 25},
	)
	return deps
}

// fakeQueue records enqueued tasks; full queues reject everything.
type fakeQueue struct {
	tasks []service.ExtractionTask
	full  bool
}

func (q *fakeQueue) Enqueue(task service.ExtractionTask) bool {
	if q.full {
		return false
	}
	q.tasks = append(q.tasks, task)
	return true
}

func TestDocumentService_UploadInvoice_Success(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New(), SupplierID: uuid.New()}

	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.us-east-1.amazonaws.com/invoice.pdf"}, nil)
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{
			Fields: map[string]interface{}{
				"invoice_number": "INV-2026-001",
				"seller_name":    "Acme Exports",
				"amount":         12500.0,
				"currency":       "USD",
			},
			Confidence: 0.95,
			Method:     "openai:gpt-5.1",
		}, nil)
	deps.shipmentRepo.On("Update", mock.Anything, shipment).Return(nil)
	deps.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.Type == domain.DocumentTypeInvoice && !d.NeedsReview && d.ConfidenceScore == 0.95
	})).Return(nil)
	deps.jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.ExtractionJob) bool {
		return j.Status == domain.ExtractionStatusCompleted
	})).Return(nil)

	result, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/invoice.pdf", result.FileURL)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "INV-2026-001", result.ExtractedData["invoice_number"])
	assert.Equal(t, "INV-2026-001", result.InvoiceDetails["unique_invoice_number"])
	// company_name falls back to the seller when the extractor gives none.
	assert.Equal(t, "Acme Exports", result.InvoiceDetails["company_name"])

	// Shipment metadata now carries the invoice_details block.
	metadata := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(shipment.Metadata, &metadata))
	assert.Contains(t, metadata, "invoice_details")

	deps.docRepo.AssertExpectations(t)
	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_UploadInvoice_RemovesTempFile(t *testing.T) {
	tempDir := t.TempDir()
	docRepo := new(mocks.MockDocumentRepo)
	jobRepo := new(mocks.MockExtractionJobRepo)
	shipmentRepo := new(mocks.MockShipmentRepo)
	storage := new(mocks.MockObjectStorage)
	extractor := new(mocks.MockDocumentExtractor)
	svc := service.NewDocumentService(docRepo, jobRepo, shipmentRepo, storage, extractor,
		&config.S3Config{Bucket: "test-bucket"},
		&config.UploadConfig{TempDir: tempDir, MaxFileSizeMB: 25})

	shipment := &domain.Shipment{ID: uuid.New()}
	shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	shipmentRepo.On("Update", mock.Anything, shipment).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/f.pdf"}, nil)
	extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Fields: map[string]interface{}{}, Confidence: 0.9, Method: "openai:gpt-5.1"}, nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob")).Return(nil)

	_, err := svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDocumentService_UploadInvoice_ExtractionFailureStillSucceeds(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New()}

	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.shipmentRepo.On("Update", mock.Anything, shipment).Return(nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/f.pdf"}, nil)
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(nil, assert.AnError)
	deps.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.NeedsReview && d.ConfidenceScore == 0
	})).Return(nil)
	deps.jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.ExtractionJob) bool {
		return j.Status == domain.ExtractionStatusFailed
	})).Return(nil)

	result, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.NoError(t, err)
	assert.Equal(t, 0.0, result.Confidence)
	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_UploadInvoice_EmptyFieldsJobFailed(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New()}

	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.shipmentRepo.On("Update", mock.Anything, shipment).Return(nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/f.pdf"}, nil)
	// Extraction succeeds but finds nothing.
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Fields: map[string]interface{}{}, Confidence: 0.3, Method: "openai:gpt-5.1"}, nil)
	deps.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	deps.jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.ExtractionJob) bool {
		return j.Status == domain.ExtractionStatusFailed
	})).Return(nil)

	_, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.NoError(t, err)
	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_UploadInvoice_LowConfidenceNeedsReview(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New()}

	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.shipmentRepo.On("Update", mock.Anything, shipment).Return(nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/f.pdf"}, nil)
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Fields: map[string]interface{}{"invoice_number": "X"}, Confidence: 0.5, Method: "openai:gpt-5.1"}, nil)
	deps.docRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.NeedsReview
	})).Return(nil)
	deps.jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob")).Return(nil)

	_, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.NoError(t, err)
	deps.docRepo.AssertExpectations(t)
}

func TestDocumentService_Upload_UnsupportedFileType(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New()}
	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)

	_, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.exe", "", []byte("MZ")))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	deps.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_FileTooLarge(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	shipmentRepo := new(mocks.MockShipmentRepo)
	svc := service.NewDocumentService(docRepo, new(mocks.MockExtractionJobRepo), shipmentRepo,
		new(mocks.MockObjectStorage), new(mocks.MockDocumentExtractor),
		&config.S3Config{Bucket: "test-bucket"},
		&config.UploadConfig{TempDir: t.TempDir(), MaxFileSizeMB: 1})

	shipment := &domain.Shipment{ID: uuid.New()}
	shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)

	input := newUpload(shipment.ID, "big.pdf", "application/pdf", []byte("%PDF-1.4"))
	input.Header.Size = 2 * 1024 * 1024

	_, err := svc.UploadInvoice(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	deps := newDocumentService(t)
	shipment := &domain.Shipment{ID: uuid.New()}

	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)

	_, err := deps.svc.UploadInvoice(context.Background(), newUpload(shipment.ID, "invoice.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	deps.docRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_UploadDocument_Enqueues(t *testing.T) {
	deps := newDocumentService(t)
	queue := &fakeQueue{}
	deps.svc.AttachQueue(queue)

	shipment := &domain.Shipment{ID: uuid.New()}
	deps.shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	deps.storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/bl.pdf"}, nil)
	deps.docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	deps.jobRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *domain.ExtractionJob) bool {
		return j.Status == domain.ExtractionStatusPending
	})).Return(nil)

	input := newUpload(shipment.ID, "bl.pdf", "application/pdf", []byte("%PDF-1.4"))
	input.DocumentType = domain.DocumentTypeBillOfLading

	doc, err := deps.svc.UploadDocument(context.Background(), input)

	assert.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeBillOfLading, doc.Type)
	assert.True(t, doc.NeedsReview)
	assert.Len(t, queue.tasks, 1)
	assert.Equal(t, doc.ID, queue.tasks[0].DocumentID)

	// The worker owns the temp file now; clean it up here.
	assert.FileExists(t, queue.tasks[0].FilePath)
	assert.NoError(t, os.Remove(queue.tasks[0].FilePath))
}

func TestDocumentService_UploadDocument_QueueFull(t *testing.T) {
	tempDir := t.TempDir()
	docRepo := new(mocks.MockDocumentRepo)
	jobRepo := new(mocks.MockExtractionJobRepo)
	shipmentRepo := new(mocks.MockShipmentRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewDocumentService(docRepo, jobRepo, shipmentRepo, storage,
		new(mocks.MockDocumentExtractor),
		&config.S3Config{Bucket: "test-bucket"},
		&config.UploadConfig{TempDir: tempDir, MaxFileSizeMB: 25})
	svc.AttachQueue(&fakeQueue{full: true})

	shipment := &domain.Shipment{ID: uuid.New()}
	shipmentRepo.On("GetByID", mock.Anything, shipment.ID).Return(shipment, nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://example.test/bl.pdf"}, nil)
	docRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	jobRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob")).Return(nil)
	jobRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.ExtractionStatusFailed, "extraction queue full").Return(nil)

	doc, err := svc.UploadDocument(context.Background(), newUpload(shipment.ID, "bl.pdf", "application/pdf", []byte("%PDF-1.4")))

	// The upload itself still succeeds; the failure lives on the job.
	assert.NoError(t, err)
	assert.NotNil(t, doc)
	jobRepo.AssertExpectations(t)

	entries, err := os.ReadDir(tempDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDocumentService_ProcessExtraction_Success(t *testing.T) {
	deps := newDocumentService(t)

	doc := &domain.Document{
		ID:         uuid.New(),
		ShipmentID: uuid.New(),
		Type:       domain.DocumentTypePackingList,
		MimeType:   "application/pdf",
	}
	job := &domain.ExtractionJob{ID: uuid.New(), DocumentID: doc.ID, Status: domain.ExtractionStatusPending}

	deps.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	deps.extractor.On("Extract", mock.Anything, mock.MatchedBy(func(in port.ExtractInput) bool {
		return in.DocumentType == domain.DocumentTypePackingList && in.FilePath == "/tmp/pl.pdf"
	})).Return(&port.ExtractOutput{
		Fields:     map[string]interface{}{"total_packages": 10.0},
		Confidence: 0.88,
		Method:     "openai:gpt-5.1",
	}, nil)
	deps.docRepo.On("UpdateExtraction", mock.Anything, mock.MatchedBy(func(d *domain.Document) bool {
		return d.ConfidenceScore == 0.88 && !d.NeedsReview
	})).Return(nil)
	deps.jobRepo.On("GetByDocumentID", mock.Anything, doc.ID).Return(job, nil)
	deps.jobRepo.On("UpdateStatus", mock.Anything, job.ID, domain.ExtractionStatusCompleted, "").Return(nil)

	deps.svc.ProcessExtraction(context.Background(), doc.ID, "/tmp/pl.pdf")

	deps.docRepo.AssertExpectations(t)
	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_ProcessExtraction_EmptyFieldsJobFailed(t *testing.T) {
	deps := newDocumentService(t)

	doc := &domain.Document{ID: uuid.New(), MimeType: "application/pdf", Type: domain.DocumentTypeOther}
	job := &domain.ExtractionJob{ID: uuid.New(), DocumentID: doc.ID, Status: domain.ExtractionStatusPending}

	deps.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(&port.ExtractOutput{Fields: map[string]interface{}{}, Confidence: 0.2, Method: "openai:gpt-5.1"}, nil)
	deps.docRepo.On("UpdateExtraction", mock.Anything, mock.AnythingOfType("*domain.Document")).Return(nil)
	deps.jobRepo.On("GetByDocumentID", mock.Anything, doc.ID).Return(job, nil)
	deps.jobRepo.On("UpdateStatus", mock.Anything, job.ID, domain.ExtractionStatusFailed, "").Return(nil)

	deps.svc.ProcessExtraction(context.Background(), doc.ID, "/tmp/x.pdf")

	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_ProcessExtraction_FailureRecordedOnJob(t *testing.T) {
	deps := newDocumentService(t)

	doc := &domain.Document{ID: uuid.New(), MimeType: "application/pdf", Type: domain.DocumentTypeOther}
	job := &domain.ExtractionJob{ID: uuid.New(), DocumentID: doc.ID}

	deps.docRepo.On("GetByID", mock.Anything, doc.ID).Return(doc, nil)
	deps.extractor.On("Extract", mock.Anything, mock.AnythingOfType("port.ExtractInput")).
		Return(nil, assert.AnError)
	deps.jobRepo.On("GetByDocumentID", mock.Anything, doc.ID).Return(job, nil)
	deps.jobRepo.On("UpdateStatus", mock.Anything, job.ID, domain.ExtractionStatusFailed, assert.AnError.Error()).Return(nil)

	deps.svc.ProcessExtraction(context.Background(), doc.ID, "/tmp/x.pdf")

	deps.docRepo.AssertNotCalled(t, "UpdateExtraction", mock.Anything, mock.Anything)
	deps.jobRepo.AssertExpectations(t)
}

func TestDocumentService_DiscardExtraction(t *testing.T) {
	deps := newDocumentService(t)

	docID := uuid.New()
	job := &domain.ExtractionJob{ID: uuid.New(), DocumentID: docID, Status: domain.ExtractionStatusPending}
	tempPath := filepath.Join(t.TempDir(), "queued.pdf")
	assert.NoError(t, os.WriteFile(tempPath, []byte("%PDF-1.4"), 0o644))

	deps.jobRepo.On("GetByDocumentID", mock.Anything, docID).Return(job, nil)
	deps.jobRepo.On("UpdateStatus", mock.Anything, job.ID, domain.ExtractionStatusFailed,
		"extraction worker stopped before processing").Return(nil)

	deps.svc.DiscardExtraction(context.Background(), docID, tempPath)

	deps.jobRepo.AssertExpectations(t)
	_, err := os.Stat(tempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentService_ListByShipment_ShipmentMustExist(t *testing.T) {
	deps := newDocumentService(t)
	shipmentID := uuid.New()
	deps.shipmentRepo.On("GetByID", mock.Anything, shipmentID).Return(nil, domain.ErrShipmentNotFound)

	_, err := deps.svc.ListByShipment(context.Background(), shipmentID)

	assert.ErrorIs(t, err, domain.ErrShipmentNotFound)
	deps.docRepo.AssertNotCalled(t, "ListByShipment", mock.Anything, mock.Anything)
}
