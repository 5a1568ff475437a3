package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"consolidation-service/internal/models"
)

// EnrichmentClientInterface generates descriptive content for a consolidated
// entry before it is published
type EnrichmentClientInterface interface {
	Enrich(ctx context.Context, tenantID string, entry *models.MasterFileEntry) (map[string]string, error)
}

// EnrichmentClient handles communication with the enrichment-service
type EnrichmentClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ EnrichmentClientInterface = (*EnrichmentClient)(nil)

// NewEnrichmentClient creates a new enrichment client
func NewEnrichmentClient(baseURL string) *EnrichmentClient {
	return &EnrichmentClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type enrichRequest struct {
	IdentityKey string `json:"identityKey"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
}

type enrichResponse struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data,omitempty"`
	Message *string           `json:"message,omitempty"`
}

// Enrich requests generated content (title, description, bullet points) for
// one entry. The result maps field name to generated text.
func (c *EnrichmentClient) Enrich(ctx context.Context, tenantID string, entry *models.MasterFileEntry) (map[string]string, error) {
	body, err := json.Marshal(enrichRequest{
		IdentityKey: entry.IdentityKey,
		Name:        entry.Name,
		Brand:       entry.Brand,
		Category:    entry.Category,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/enrich", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("enrichment service returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed enrichResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode enrichment response: %w", err)
	}
	if !parsed.Success {
		msg := "unknown error"
		if parsed.Message != nil {
			msg = *parsed.Message
		}
		return nil, fmt.Errorf("enrichment failed: %s", msg)
	}
	return parsed.Data, nil
}
