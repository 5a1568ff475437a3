package models

import "github.com/google/uuid"

// ImportFormat represents the file format of an uploaded price list
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportRowError represents an error for a specific raw row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the outcome of one price-list import run
type ImportResult struct {
	Success       bool             `json:"success"`
	JobRunID      uuid.UUID        `json:"jobRunId"`
	SupplierID    uuid.UUID        `json:"supplierId"`
	TotalRows     int              `json:"totalRows"`
	AcceptedCount int              `json:"acceptedCount"`
	RejectedCount int              `json:"rejectedCount"`
	Errors        []ImportRowError `json:"errors,omitempty"`
	ProcessingMs  int64            `json:"processingMs"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// PriceListTemplateColumns returns the canonical column set for the
// downloadable template. Real supplier files use their own headers and are
// translated by the field mapping.
func PriceListTemplateColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "ean", Description: "Product EAN/GTIN barcode", Required: false, Type: "string", Example: "4711636118521"},
		{Name: "partNumber", Description: "Supplier SKU / part number", Required: true, Type: "string", Example: "HP-255-G8"},
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "HP 255 G8 Notebook"},
		{Name: "brand", Description: "Brand name", Required: false, Type: "string", Example: "HP"},
		{Name: "category", Description: "Category name", Required: false, Type: "string", Example: "Notebooks"},
		{Name: "price", Description: "Purchase price", Required: true, Type: "number", Example: "389.90"},
		{Name: "quantity", Description: "Available quantity", Required: true, Type: "number", Example: "12"},
	}
}
