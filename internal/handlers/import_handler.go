package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"

	"consolidation-service/internal/middleware"
	"consolidation-service/internal/models"
	"consolidation-service/internal/repository"
	"consolidation-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportHandler handles price-list uploads and template downloads
type ImportHandler struct {
	importService *services.ImportService
	offersRepo    repository.OffersRepositoryInterface
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *services.ImportService, offersRepo repository.OffersRepositoryInterface) *ImportHandler {
	return &ImportHandler{importService: importService, offersRepo: offersRepo}
}

// ImportPriceList imports a supplier price list from CSV or XLSX
// POST /api/v1/suppliers/:id/import
func (h *ImportHandler) ImportPriceList(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid supplier ID"},
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "Please upload a CSV or Excel file"},
		})
		return
	}
	defer file.Close()

	var format models.ImportFormat
	filename := strings.ToLower(header.Filename)
	switch {
	case strings.HasSuffix(filename, ".csv"):
		format = models.ImportFormatCSV
	case strings.HasSuffix(filename, ".xlsx"):
		format = models.ImportFormatXLSX
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_FORMAT", Message: "Only CSV and XLSX files are supported"},
		})
		return
	}

	result, err := h.importService.ImportPriceList(c.Request.Context(), tenantID, supplierID, file, format)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "IMPORT_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRejections lists the rejection samples of an import run
// GET /api/v1/imports/:runId/rejections
func (h *ImportHandler) ListRejections(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_ID", Message: "Invalid import run ID"},
		})
		return
	}

	rejections, err := h.offersRepo.ListRejections(c.Request.Context(), tenantID, runID, 500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "LIST_FAILED", Message: "Failed to list rejections"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: rejections})
}

// GetImportTemplate returns the canonical import template
// GET /api/v1/imports/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	columns := models.PriceListTemplateColumns()

	switch format {
	case "csv":
		h.writeCSVTemplate(c, columns)
	case "xlsx":
		h.writeXLSXTemplate(c, columns)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": columns,
		})
	}
}

func (h *ImportHandler) writeCSVTemplate(c *gin.Context, columns []models.ImportTemplateColumn) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=pricelist_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

func (h *ImportHandler) writeXLSXTemplate(c *gin.Context, columns []models.ImportTemplateColumn) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "PriceList"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)
		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Price List Import Instructions")
	f.SetCellValue("Instructions", "A3", "This template lists the canonical columns. Supplier files may use their own")
	f.SetCellValue("Instructions", "A4", "headers; configure field mappings on the supplier to translate them.")
	f.SetCellValue("Instructions", "A6", "Column")
	f.SetCellValue("Instructions", "B6", "Description")
	f.SetCellValue("Instructions", "C6", "Required")
	f.SetCellValue("Instructions", "D6", "Example")
	for i, col := range columns {
		row := i + 7
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		cellC, _ := excelize.CoordinatesToCellName(3, row)
		cellD, _ := excelize.CoordinatesToCellName(4, row)
		f.SetCellValue("Instructions", cellA, col.Name)
		f.SetCellValue("Instructions", cellB, col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", cellC, required)
		f.SetCellValue("Instructions", cellD, col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 20)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 30)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=pricelist_import_template.xlsx")
	f.Write(c.Writer)
}
