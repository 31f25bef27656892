package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/psds-microservice/report-service/internal/httpclient"
	"github.com/psds-microservice/report-service/internal/model"
)

const indexTimeout = 10 * time.Second

// Client отправляет отчёты в search-service для индексации (best-effort, не блокирует ботов).
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient возвращает клиент. Если baseURL пустой, вызовы IndexReport — no-op.
func NewClient(log *slog.Logger, baseURL string) *Client {
	log = log.With("component", "searchindex")
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpclient.NewStandard(log, httpclient.WithMaxRetries(2)),
		log:        log,
	}
}

// IndexReportPayload — тело POST /search/index/report.
type IndexReportPayload struct {
	ReportID   string `json:"report_id"`
	Product    string `json:"product"`
	Intent     string `json:"intent"`
	Consent    string `json:"consent"`
	Comment    string `json:"comment"`
	Username   string `json:"username"`
	ClientName string `json:"client_name,omitempty"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func payloadOf(r *model.Report) IndexReportPayload {
	p := IndexReportPayload{
		ReportID:  r.ID,
		Product:   string(r.Product),
		Intent:    string(r.Intent),
		Consent:   string(r.Consent),
		Comment:   r.Comment,
		Username:  r.Username,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.ClientName != nil {
		p.ClientName = *r.ClientName
	}
	return p
}

func (c *Client) Enabled() bool { return c.baseURL != "" }

// IndexReport отправляет отчёт в search-service. Ошибку возвращает для reindex-search;
// боты вызывают IndexReportAsync.
func (c *Client) IndexReport(ctx context.Context, r *model.Report) error {
	if c.baseURL == "" {
		return nil
	}
	body, err := json.Marshal(payloadOf(r))
	if err != nil {
		return fmt.Errorf("searchindex: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/index/report", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("searchindex: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchindex: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("searchindex: status %d for report %s", resp.StatusCode, r.ID)
	}
	return nil
}

// IndexReportAsync вызывает IndexReport в отдельной горутине.
func (c *Client) IndexReportAsync(r *model.Report) {
	if c.baseURL == "" {
		return
	}
	snapshot := *r
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := c.IndexReport(ctx, &snapshot); err != nil {
			c.log.Warn("index report", "report_id", snapshot.ID, "error", err)
		}
	}()
}
