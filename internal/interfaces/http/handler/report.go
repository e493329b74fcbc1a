package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/retailops/backoffice/internal/application/report"
)

// ReportHandler handles financial report endpoints
type ReportHandler struct {
	BaseHandler
	reports *report.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ProfitAndLoss godoc
// @ID           getProfitAndLoss
// @Summary      Profit and loss statement
// @Description  Covers invoices created in [from, to). Cancelled invoices are excluded.
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start" format(date)
// @Param        to query string true "Period end, exclusive" format(date)
// @Success      200 {object} APIResponse[report.ProfitAndLoss]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/profit-loss [get]
func (h *ReportHandler) ProfitAndLoss(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter report.PeriodFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	pnl, err := h.reports.ProfitAndLoss(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pnl)
}

// ReceivablesAging godoc
// @ID           getReceivablesAging
// @Summary      Receivables aging
// @Description  Open invoices bucketed 0-30, 31-60, 61-90 and 90+ days by age
// @Tags         reports
// @Produce      json
// @Param        as_of query string false "Reference date, defaults to today" format(date)
// @Success      200 {object} APIResponse[report.ReceivablesAging]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/aging [get]
func (h *ReportHandler) ReceivablesAging(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter report.AgingFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	aging, err := h.reports.ReceivablesAging(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, aging)
}

// ExportProfitAndLoss godoc
// @ID           exportProfitAndLoss
// @Summary      Export profit and loss as CSV
// @Description  Uploads the statement to object storage and returns a presigned download URL.
// @Description  Answers 503 FEATURE_DISABLED when no storage is configured.
// @Tags         reports
// @Produce      json
// @Param        from query string true "Period start" format(date)
// @Param        to query string true "Period end, exclusive" format(date)
// @Success      201 {object} APIResponse[report.ExportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reports/profit-loss/export [post]
func (h *ReportHandler) ExportProfitAndLoss(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter report.PeriodFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	export, err := h.reports.ExportProfitAndLoss(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, export)
}
