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

// StorefrontClientInterface uploads publishable products to the storefront
// platform and returns the external product reference
type StorefrontClientInterface interface {
	UploadProduct(ctx context.Context, entry *models.MasterFileEntry, enrichment map[string]string) (string, error)
}

// StorefrontClient handles communication with the Shopify storefront API
type StorefrontClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

var _ StorefrontClientInterface = (*StorefrontClient)(nil)

// NewStorefrontClient creates a new storefront client
func NewStorefrontClient(baseURL, apiToken string) *StorefrontClient {
	return &StorefrontClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type storefrontProduct struct {
	Title       string            `json:"title"`
	Vendor      string            `json:"vendor,omitempty"`
	ProductType string            `json:"product_type,omitempty"`
	Price       string            `json:"price"`
	Quantity    int               `json:"quantity"`
	SKU         string            `json:"sku"`
	Metafields  map[string]string `json:"metafields,omitempty"`
}

type storefrontResponse struct {
	Product struct {
		ID int64 `json:"id"`
	} `json:"product"`
	Errors interface{} `json:"errors,omitempty"`
}

// UploadProduct creates or updates one product on the storefront and
// returns its external reference
func (c *StorefrontClient) UploadProduct(ctx context.Context, entry *models.MasterFileEntry, enrichment map[string]string) (string, error) {
	title := entry.Name
	if t, ok := enrichment["title"]; ok && t != "" {
		title = t
	}

	body, err := json.Marshal(map[string]storefrontProduct{
		"product": {
			Title:       title,
			Vendor:      entry.Brand,
			ProductType: entry.Category,
			Price:       entry.SellPrice.StringFixed(2),
			Quantity:    entry.AggregatedQuantity,
			SKU:         entry.IdentityKey,
			Metafields:  enrichment,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/api/products.json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("storefront API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed storefrontResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode storefront response: %w", err)
	}
	if parsed.Product.ID == 0 {
		return "", fmt.Errorf("storefront API returned no product id")
	}
	return fmt.Sprintf("%d", parsed.Product.ID), nil
}
