package docdetail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

// Detail is the extended per-document payload from the detail service.
type Detail struct {
	Pages    []docModel.PageImage     `json:"pages,omitempty"`
	Metadata *docModel.SourceMetadata `json:"metadata,omitempty"`
	Title    string                   `json:"title,omitempty"`
	FileName string                   `json:"file_name,omitempty"`
}

type Fetcher interface {
	GetDocument(ctx context.Context, documentId string) (*Detail, error)
}

// reuse connections across detail fetches, the assembler fires several at once
var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger_i.Logger
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: pooledTransport,
			Timeout:   config.BackendCallTimeout,
		},
		logger: logger_i.NewLogger("DocDetail"),
	}
}

func (c *Client) GetDocument(ctx context.Context, documentId string) (*Detail, error) {
	if c.baseURL == "" {
		return nil, errors.New("document detail service not configured")
	}

	endpoint := fmt.Sprintf("%s/documents/%s", c.baseURL, url.PathEscape(documentId))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Detail fetch failed", "documentId", documentId, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail service returned %d for %s", resp.StatusCode, documentId)
	}

	var detail Detail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decoding detail response: %w", err)
	}
	return &detail, nil
}
