package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estimate-parser/constants"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/entity"
	"github.com/joseph-ayodele/estimate-parser/internal/export"
	"github.com/joseph-ayodele/estimate-parser/internal/ingest"
	"github.com/joseph-ayodele/estimate-parser/internal/services/estimate"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errInvalidBody = common.NewAppError("INVALID_REQUEST", "request body must be a JSON document", common.ErrInvalidInput)

// HealthChecker is satisfied by *repository.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context, timeout time.Duration) error
}

// EstimateHandler serves the parse, history and price endpoints.
type EstimateHandler struct {
	svc    *estimate.Service
	export *export.Service
	logger *slog.Logger
}

func NewEstimateHandler(svc *estimate.Service, exp *export.Service, logger *slog.Logger) *EstimateHandler {
	return &EstimateHandler{svc: svc, export: exp, logger: common.LoggerOrDefault(logger)}
}

// ParseResponse is the reply to POST /v1/estimates/parse.
type ParseResponse struct {
	Estimate       entity.Estimate    `json:"estimate"`
	Strategy       constants.Strategy `json:"strategy"`
	TextConfidence float32            `json:"text_confidence"`
	HistoryID      *uuid.UUID         `json:"history_id,omitempty"`
}

func (h *EstimateHandler) Parse(c *gin.Context) {
	var req ingest.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, errInvalidBody)
		return
	}
	doc, err := req.Document(h.logger)
	if err != nil {
		writeError(c, err)
		return
	}
	ctx := common.WithSourceName(c.Request.Context(), doc.SourceName)
	out, err := h.svc.Parse(ctx, doc, req.Save)
	if err != nil {
		h.logger.Error("parse request failed", "source", doc.SourceName, "err", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ParseResponse{
		Estimate:       out.Estimate,
		Strategy:       out.Strategy,
		TextConfidence: out.TextConfidence,
		HistoryID:      out.HistoryID,
	})
}

// queryLimit reads ?limit=, 0 when absent.
func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.InvalidArgumentError("limit must be an integer")
	}
	return n, nil
}

func (h *EstimateHandler) ListHistory(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		writeError(c, err)
		return
	}
	list, err := h.svc.ListHistory(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list})
}

func (h *EstimateHandler) GetHistory(c *gin.Context) {
	rec, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *EstimateHandler) ExportHistory(c *gin.Context) {
	rec, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	b, err := h.export.EstimateXLSX(rec.Estimate)
	if err != nil {
		h.logger.Error("export.xlsx.failed", "history_id", rec.ID, "err", err)
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="estimate-%s.xlsx"`, rec.ID))
	c.Data(http.StatusOK, xlsxContentType, b)
}

func (h *EstimateHandler) AveragePrice(c *gin.Context) {
	stat, err := h.svc.AveragePrice(c.Request.Context(), c.Query("item_name_norm"), c.Query("cost_type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}

func (h *EstimateHandler) Search(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.svc.Search(c.Request.Context(), c.Query("keyword"), c.Query("area"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EstimateHandler) CheapestPrice(c *gin.Context) {
	hit, err := h.svc.Cheapest(c.Request.Context(), c.Query("keyword"), c.Query("area"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, hit)
}

func (h *EstimateHandler) PriceStatistics(c *gin.Context) {
	stat, err := h.svc.Statistics(c.Request.Context(), c.Query("keyword"), c.Query("area"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stat)
}

func health(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		if db == nil {
			dbStatus = "disabled"
		} else if err := db.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
			dbStatus = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": dbStatus})
	}
}
