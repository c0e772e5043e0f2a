package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paycall_backend/platform/httpkit"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// HandleDailyReport returns the aggregates for one date, defaulting to today.
func (h *Handler) HandleDailyReport(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
		date = parsed
	}

	report, err := h.repo.GetDailyReport(c.Request.Context(), date)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, report)
}

// HandleWeeklyReport returns the last seven days of aggregates.
func (h *Handler) HandleWeeklyReport(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	reports, err := h.repo.GetDailyReportRange(c.Request.Context(), from, to)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	var totalCalls int
	for _, r := range reports {
		totalCalls += r.TotalCalls
	}
	httpkit.OK(c, gin.H{
		"period":     from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		"totalCalls": totalCalls,
		"daily":      reports,
	})
}

// HandlePendingInvoices returns the unpaid invoice ageing summary.
func (h *Handler) HandlePendingInvoices(c *gin.Context) {
	summary, err := h.repo.GetPendingSummary(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, summary)
}
