package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brandguard-platform/internal/docstore"
	"brandguard-platform/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ClientExportData is the structured payload for a tenant roster export.
type ClientExportData struct {
	ExportInfo ExportInfo      `json:"export_info"`
	Clients    []ClientExport  `json:"clients"`
	Summary    []DocTypeCount  `json:"doc_type_summary,omitempty"`
}

type ExportInfo struct {
	ExportDate   time.Time `json:"export_date"`
	TotalClients int       `json:"total_clients"`
	Format       string    `json:"format"`
}

type ClientExport struct {
	ClientID         string    `json:"client_id"`
	BrandVoice       string    `json:"brand_voice"`
	Tone             string    `json:"tone"`
	Lexicon          []string  `json:"lexicon"`
	AvoidTerms       []string  `json:"avoid_terms"`
	DeliverableTypes []string  `json:"deliverable_types"`
	DocumentCount    int64     `json:"document_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type DocTypeCount struct {
	DeliverableType string `json:"deliverable_type"`
	Clients         int    `json:"clients"`
}

// ExportService builds client roster exports for the admin dashboard.
type ExportService struct {
	registry registry.Registry
	store    docstore.Store
}

func NewExportService(reg registry.Registry, store docstore.Store) *ExportService {
	return &ExportService{
		registry: reg,
		store:    store,
	}
}

// BuildExport collects all registered clients with their corpus sizes.
func (es *ExportService) BuildExport(ctx context.Context, format string) (*ClientExportData, error) {
	profiles, err := es.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]ClientExport, 0, len(profiles))
	deliverableCounts := make(map[string]int)

	for _, profile := range profiles {
		count, err := es.store.Count(ctx, profile.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to count documents for %s: %w", profile.ClientID, err)
		}

		clients = append(clients, ClientExport{
			ClientID:         profile.ClientID,
			BrandVoice:       profile.BrandVoice,
			Tone:             profile.Tone,
			Lexicon:          profile.Lexicon,
			AvoidTerms:       profile.AvoidTerms,
			DeliverableTypes: profile.DeliverableTypes,
			DocumentCount:    count,
			CreatedAt:        profile.CreatedAt,
			UpdatedAt:        profile.UpdatedAt,
		})

		for _, dt := range profile.DeliverableTypes {
			deliverableCounts[dt]++
		}
	}

	summary := make([]DocTypeCount, 0, len(deliverableCounts))
	for dt, n := range deliverableCounts {
		summary = append(summary, DocTypeCount{DeliverableType: dt, Clients: n})
	}

	return &ClientExportData{
		ExportInfo: ExportInfo{
			ExportDate:   time.Now().UTC(),
			TotalClients: len(clients),
			Format:       format,
		},
		Clients: clients,
		Summary: summary,
	}, nil
}

// StreamExport writes the export directly to the HTTP response in the
// requested format.
func (es *ExportService) StreamExport(c *gin.Context, data *ClientExportData, format string) error {
	switch format {
	case "json":
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}

		c.Header("Content-Disposition", "attachment; filename=clients_export.json")
		c.Header("Content-Length", strconv.Itoa(len(jsonData)))
		c.Data(http.StatusOK, "application/json", jsonData)

	case "excel":
		buf, err := es.buildWorkbook(data)
		if err != nil {
			return err
		}

		c.Header("Content-Disposition", "attachment; filename=clients_export.xlsx")
		c.Header("Content-Length", strconv.Itoa(buf.Len()))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())

	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	return nil
}

func (es *ExportService) buildWorkbook(data *ClientExportData) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Clients"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Client ID", "Brand Voice", "Tone", "Lexicon", "Avoid Terms",
		"Deliverable Types", "Documents", "Created At", "Updated At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, client := range data.Clients {
		row := rowIdx + 2

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), client.ClientID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), client.BrandVoice)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), client.Tone)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), strings.Join(client.Lexicon, ", "))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), strings.Join(client.AvoidTerms, ", "))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), strings.Join(client.DeliverableTypes, ", "))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), client.DocumentCount)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), client.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), client.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	for i := range headers {
		col := fmt.Sprintf("%c:%c", 'A'+i, 'A'+i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	summarySheetName := "Summary"
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Export Date", data.ExportInfo.ExportDate.Format("2006-01-02 15:04:05")},
		{"Total Clients", data.ExportInfo.TotalClients},
		{"", ""},
		{"Deliverable Type", "Clients"},
	}
	for _, dt := range data.Summary {
		summaryRows = append(summaryRows, []interface{}{dt.DeliverableType, dt.Clients})
	}

	for i, row := range summaryRows {
		for j, cell := range row {
			cellRef := fmt.Sprintf("%c%d", 'A'+j, i+1)
			f.SetCellValue(summarySheetName, cellRef, cell)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return &buf, nil
}
