package handlers

import (
	"net/http"
	"time"

	"shop-service/internal/dto"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reports service.ReportService
	log     *zap.Logger
}

func NewReportHandler(reports service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

func (h *ReportHandler) GetByDate(c *gin.Context) {
	raw := c.Query("report_at")
	reportAt, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("report_at must be YYYY-MM-DD", nil))
		return
	}

	rows, err := h.reports.GetByDate(c.Request.Context(), reportAt)
	if err != nil {
		h.log.Error("get report failed", zap.String("report_at", raw), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	resp := make([]dto.ReportRow, 0, len(rows))
	for _, r := range rows {
		resp = append(resp, dto.ToReportRow(r))
	}
	c.JSON(http.StatusOK, resp)
}
