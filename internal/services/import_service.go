package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"consolidation-service/internal/events"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ImportService ingests one supplier price list: decode, parse, translate
// through the field mapping, normalize and atomically replace the
// supplier's offer snapshot.
type ImportService struct {
	suppliersRepo repository.SuppliersRepositoryInterface
	offersRepo    repository.OffersRepositoryInterface
	jobsRepo      repository.JobsRepositoryInterface
	normalizer    *Normalizer
	publisher     *events.Publisher
	logger        *logrus.Logger

	maxRowErrors int
}

// NewImportService creates a new price-list import service
func NewImportService(
	suppliersRepo repository.SuppliersRepositoryInterface,
	offersRepo repository.OffersRepositoryInterface,
	jobsRepo repository.JobsRepositoryInterface,
	publisher *events.Publisher,
	logger *logrus.Logger,
	maxRowErrors int,
) *ImportService {
	if maxRowErrors <= 0 {
		maxRowErrors = 200
	}
	return &ImportService{
		suppliersRepo: suppliersRepo,
		offersRepo:    offersRepo,
		jobsRepo:      jobsRepo,
		normalizer:    NewNormalizer(),
		publisher:     publisher,
		logger:        logger,
		maxRowErrors:  maxRowErrors,
	}
}

// ImportPriceList runs one import for a supplier. The supplier's prior
// snapshot is replaced wholesale; rejected rows never abort the run, they
// are recorded and reported. Rejections downgrade the run to WARNING.
func (s *ImportService) ImportPriceList(ctx context.Context, tenantID string, supplierID uuid.UUID, file io.Reader, format models.ImportFormat) (*models.ImportResult, error) {
	supplier, err := s.suppliersRepo.GetByID(ctx, tenantID, supplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier not found: %w", err)
	}
	if !supplier.IsActive() {
		return nil, fmt.Errorf("supplier %s is inactive", supplier.Code)
	}
	if len(supplier.FieldMappings) == 0 {
		return nil, fmt.Errorf("supplier %s has no field mappings configured", supplier.Code)
	}

	job, err := s.jobsRepo.Start(ctx, tenantID, models.PhaseImport)
	if err != nil {
		return nil, fmt.Errorf("failed to start import run: %w", err)
	}

	started := time.Now()
	result, runErr := s.runImport(ctx, tenantID, supplier, job.ID, file, format)
	if runErr != nil {
		detail := models.JSON{"error": runErr.Error(), "supplierId": supplierID.String()}
		if finishErr := s.jobsRepo.Finish(ctx, job.ID, models.JobStatusError, detail); finishErr != nil {
			s.logger.WithError(finishErr).Error("Failed to close import run")
		}
		return nil, runErr
	}

	result.Success = true
	result.JobRunID = job.ID
	result.SupplierID = supplierID
	result.ProcessingMs = time.Since(started).Milliseconds()

	status := models.JobStatusSuccess
	if result.RejectedCount > 0 {
		status = models.JobStatusWarning
	}
	detail := models.JSON{
		"supplierId":    supplierID.String(),
		"totalRows":     result.TotalRows,
		"acceptedCount": result.AcceptedCount,
		"rejectedCount": result.RejectedCount,
		"processingMs":  result.ProcessingMs,
	}
	if err := s.jobsRepo.Finish(ctx, job.ID, status, detail); err != nil {
		s.logger.WithError(err).Error("Failed to close import run")
	}

	s.publisher.PublishImported(tenantID, supplierID, job.ID, result.AcceptedCount, result.RejectedCount)

	s.logger.WithFields(logrus.Fields{
		"tenant_id":   tenantID,
		"supplier_id": supplierID,
		"job_run_id":  job.ID,
		"accepted":    result.AcceptedCount,
		"rejected":    result.RejectedCount,
	}).Info("Price-list import finished")

	return result, nil
}

func (s *ImportService) runImport(ctx context.Context, tenantID string, supplier *models.Supplier, jobRunID uuid.UUID, file io.Reader, format models.ImportFormat) (*models.ImportResult, error) {
	var rows []map[string]string
	var err error
	switch format {
	case models.ImportFormatXLSX:
		rows, err = parseXLSX(file)
	default:
		rows, err = parseCSV(decodeReader(file, supplier.Encoding), supplier.Delimiter)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("the file contains no data rows")
	}

	result := &models.ImportResult{TotalRows: len(rows)}

	offers := make([]models.SupplierOffer, 0, len(rows))
	rejections := make([]models.RowRejection, 0)
	seq := 0
	for i, rawRow := range rows {
		rowNumber := i + 2 // 1-based, header is row 1
		canonical := Translate(supplier.FieldMappings, rawRow)
		offer, rejection := s.normalizer.NormalizeRow(supplier, jobRunID, canonical, rowNumber, seq)
		if rejection != nil {
			rejection.TenantID = tenantID
			rejections = append(rejections, *rejection)
			if len(result.Errors) < s.maxRowErrors {
				result.Errors = append(result.Errors, models.ImportRowError{
					Row:     rowNumber,
					Code:    string(rejection.Reason),
					Message: rejectMessage(rejection.Reason),
				})
			}
			continue
		}
		offers = append(offers, *offer)
		seq++
	}
	result.AcceptedCount = len(offers)
	result.RejectedCount = len(rejections)

	if err := s.offersRepo.ReplaceSupplierOffers(ctx, tenantID, supplier.ID, offers, rejections); err != nil {
		return nil, fmt.Errorf("failed to store offer snapshot: %w", err)
	}

	return result, nil
}

func rejectMessage(reason models.RejectReason) string {
	switch reason {
	case models.RejectEmptyEAN:
		return "Row has no EAN and no part number to identify the product"
	case models.RejectNonNumericEAN:
		return "EAN contains non-numeric characters"
	case models.RejectMissingPrice:
		return "Purchase price is missing or not a number"
	case models.RejectMissingQuantity:
		return "Quantity is missing or not a number"
	}
	return string(reason)
}

// decodeReader wraps the raw file stream with the supplier-declared
// character decoder. Unknown encodings pass through as UTF-8.
func decodeReader(file io.Reader, encodingName string) io.Reader {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(encodingName)) {
	case "iso-8859-1", "latin1", "latin-1":
		enc = charmap.ISO8859_1
	case "iso-8859-15", "latin9":
		enc = charmap.ISO8859_15
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return file
	}
	return transform.NewReader(file, enc.NewDecoder())
}

func parseCSV(file io.Reader, delimiter string) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	if d := []rune(delimiter); len(d) > 0 {
		reader.Comma = d[0]
	} else {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	var rows []map[string]string
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
		lineNum++
	}
	return rows, nil
}

func parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	excelRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	var rows []map[string]string
	for _, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
