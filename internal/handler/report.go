package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/report-service/internal/dashboard"
	"github.com/psds-microservice/report-service/internal/errs"
	"github.com/psds-microservice/report-service/internal/model"
)

const maxListLimit = 100

type ReportReader interface {
	GetByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Report, int64, error)
}

type DashboardReader interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
}

// ReportHandler — read-only HTTP доступ к отчётам и состоянию панели.
type ReportHandler struct {
	reports ReportReader
	dash    DashboardReader
}

func NewReportHandler(reports ReportReader, dash DashboardReader) *ReportHandler {
	return &ReportHandler{reports: reports, dash: dash}
}

func (h *ReportHandler) Get(c *gin.Context) {
	r, err := h.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReportHandler) List(c *gin.Context) {
	filter := make(map[string]interface{})
	if v := c.Query("product"); v != "" {
		if !model.Product(v).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
			return
		}
		filter["product = ?"] = v
	}
	if v := c.Query("intent"); v != "" {
		if !model.Intent(v).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid intent"})
			return
		}
		filter["intent = ?"] = v
	}
	if v := c.Query("consent"); v != "" {
		if !model.Consent(v).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid consent"})
			return
		}
		filter["consent = ?"] = v
	}
	if v := c.Query("status"); v != "" {
		filter["status = ?"] = v
	}

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = min(parsed, maxListLimit)
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, total, err := h.reports.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": items,
		"total":   total,
	})
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	s, err := h.dash.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}
	c.JSON(http.StatusOK, s)
}
