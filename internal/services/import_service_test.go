package services

import (
	"context"
	"strings"
	"testing"

	"consolidation-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func importTestSupplier() *models.Supplier {
	active := true
	id := uuid.New()
	return &models.Supplier{
		ID:            id,
		TenantID:      "tenant-123",
		Name:          "Acme Wholesale",
		Code:          "ACME",
		Priority:      1,
		Active:        &active,
		Delimiter:     ";",
		Encoding:      "utf-8",
		DecimalFormat: models.DecimalFormatPoint,
		CurrencyCode:  "EUR",
		FieldMappings: []models.SupplierFieldMapping{
			{SupplierID: id, CanonicalField: models.FieldEAN, SourceColumn: "barcode"},
			{SupplierID: id, CanonicalField: models.FieldName, SourceColumn: "description"},
			{SupplierID: id, CanonicalField: models.FieldPrice, SourceColumn: "preis"},
			{SupplierID: id, CanonicalField: models.FieldQuantity, SourceColumn: "menge"},
		},
	}
}

func TestImportPriceList_CSVAcceptsAndRejects(t *testing.T) {
	ctx := context.Background()
	supplier := importTestSupplier()

	suppliersRepo := new(MockSuppliersRepository)
	offersRepo := new(MockOffersRepository)
	jobsRepo := new(MockJobsRepository)

	suppliersRepo.On("GetByID", ctx, "tenant-123", supplier.ID).Return(supplier, nil)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseImport).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusWarning, mock.Anything).Return(nil)

	var storedOffers []models.SupplierOffer
	var storedRejections []models.RowRejection
	offersRepo.On("ReplaceSupplierOffers", ctx, "tenant-123", supplier.ID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			storedOffers = args.Get(3).([]models.SupplierOffer)
			storedRejections = args.Get(4).([]models.RowRejection)
		}).
		Return(nil)

	csv := strings.Join([]string{
		"barcode;description;preis;menge",
		"4711636118521;HP 255 G8;389.90;12",
		";Cable CAT6;4.90;100",
		"4711636118522;USB Hub;abc;5",
	}, "\n")

	svc := NewImportService(suppliersRepo, offersRepo, jobsRepo, nil, testLogger(), 200)
	result, err := svc.ImportPriceList(ctx, "tenant-123", supplier.ID, strings.NewReader(csv), models.ImportFormatCSV)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.AcceptedCount)
	assert.Equal(t, 2, result.RejectedCount)

	require.Len(t, storedOffers, 1)
	assert.Equal(t, "4711636118521", *storedOffers[0].EAN)
	assert.Equal(t, "389.9", storedOffers[0].PurchasePrice.String())
	assert.Equal(t, 12, storedOffers[0].Quantity)

	require.Len(t, storedRejections, 2)
	assert.Equal(t, models.RejectEmptyEAN, storedRejections[0].Reason)
	assert.Equal(t, 3, storedRejections[0].RowNumber, "data rows are numbered from 2, after the header")
	assert.Equal(t, models.RejectMissingPrice, storedRejections[1].Reason)
	assert.Equal(t, 4, storedRejections[1].RowNumber)

	jobsRepo.AssertExpectations(t)
	offersRepo.AssertExpectations(t)
}

func TestImportPriceList_CleanFileFinishesSuccess(t *testing.T) {
	ctx := context.Background()
	supplier := importTestSupplier()

	suppliersRepo := new(MockSuppliersRepository)
	offersRepo := new(MockOffersRepository)
	jobsRepo := new(MockJobsRepository)

	suppliersRepo.On("GetByID", ctx, "tenant-123", supplier.ID).Return(supplier, nil)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseImport).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusSuccess, mock.Anything).Return(nil)
	offersRepo.On("ReplaceSupplierOffers", ctx, "tenant-123", supplier.ID, mock.Anything, mock.Anything).Return(nil)

	csv := "barcode;description;preis;menge\n4711636118521;HP 255 G8;389.90;12\n"

	svc := NewImportService(suppliersRepo, offersRepo, jobsRepo, nil, testLogger(), 200)
	result, err := svc.ImportPriceList(ctx, "tenant-123", supplier.ID, strings.NewReader(csv), models.ImportFormatCSV)

	require.NoError(t, err)
	assert.Equal(t, 1, result.AcceptedCount)
	assert.Equal(t, 0, result.RejectedCount)
	jobsRepo.AssertExpectations(t)
}

func TestImportPriceList_InactiveSupplierRefused(t *testing.T) {
	ctx := context.Background()
	supplier := importTestSupplier()
	inactive := false
	supplier.Active = &inactive

	suppliersRepo := new(MockSuppliersRepository)
	jobsRepo := new(MockJobsRepository)
	suppliersRepo.On("GetByID", ctx, "tenant-123", supplier.ID).Return(supplier, nil)

	svc := NewImportService(suppliersRepo, new(MockOffersRepository), jobsRepo, nil, testLogger(), 200)
	_, err := svc.ImportPriceList(ctx, "tenant-123", supplier.ID, strings.NewReader("x"), models.ImportFormatCSV)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
	jobsRepo.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportPriceList_MissingMappingsRefused(t *testing.T) {
	ctx := context.Background()
	supplier := importTestSupplier()
	supplier.FieldMappings = nil

	suppliersRepo := new(MockSuppliersRepository)
	suppliersRepo.On("GetByID", ctx, "tenant-123", supplier.ID).Return(supplier, nil)

	svc := NewImportService(suppliersRepo, new(MockOffersRepository), new(MockJobsRepository), nil, testLogger(), 200)
	_, err := svc.ImportPriceList(ctx, "tenant-123", supplier.ID, strings.NewReader("x"), models.ImportFormatCSV)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no field mappings")
}

func TestImportPriceList_EmptyFileFailsRun(t *testing.T) {
	ctx := context.Background()
	supplier := importTestSupplier()

	suppliersRepo := new(MockSuppliersRepository)
	jobsRepo := new(MockJobsRepository)
	suppliersRepo.On("GetByID", ctx, "tenant-123", supplier.ID).Return(supplier, nil)

	job := &models.JobRun{ID: uuid.New(), Status: models.JobStatusRunning}
	jobsRepo.On("Start", ctx, "tenant-123", models.PhaseImport).Return(job, nil)
	jobsRepo.On("Finish", ctx, job.ID, models.JobStatusError, mock.Anything).Return(nil)

	svc := NewImportService(suppliersRepo, new(MockOffersRepository), jobsRepo, nil, testLogger(), 200)
	_, err := svc.ImportPriceList(ctx, "tenant-123", supplier.ID, strings.NewReader("barcode;preis;menge\n"), models.ImportFormatCSV)

	require.Error(t, err)
	jobsRepo.AssertExpectations(t)
}

func TestParseCSV_CommaDelimiterAndHeaderCase(t *testing.T) {
	rows, err := parseCSV(strings.NewReader("EAN,Price\n4711636118521,9.99\n"), ",")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "4711636118521", rows[0]["ean"])
	assert.Equal(t, "9.99", rows[0]["price"])
}

func TestDecodeReader_Latin1(t *testing.T) {
	// 0xE9 is e-acute in ISO 8859-1
	raw := []byte{'c', 'a', 'f', 0xE9}
	decoded := decodeReader(strings.NewReader(string(raw)), "iso-8859-1")

	buf := make([]byte, 16)
	n, _ := decoded.Read(buf)
	assert.Equal(t, "café", string(buf[:n]))
}
