package api

import (
	stderrors "errors"
	"net/http"

	"gorepness/app"
	"gorepness/domain/core"
	"gorepness/domain/stats"
	"gorepness/domain/votes"
	"gorepness/internal"
	"gorepness/internal/errors"
	"gorepness/internal/report"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler serves representative-statement calculations
type AnalysisHandler struct {
	analysis *app.AnalysisService
	manager  *app.RepresentativeStatementsManager
	defaults stats.AnalysisOptions
	logger   *internal.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *app.AnalysisService, manager *app.RepresentativeStatementsManager, defaults stats.AnalysisOptions) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		manager:  manager,
		defaults: defaults,
		logger:   internal.DefaultLogger.Component("API"),
	}
}

// AnalysisBody is the POST /api/analysis payload. Either labels or
// color_indices is given; color indices are mapped to labels with -1 as
// the unpainted sentinel.
type AnalysisBody struct {
	Labels           []votes.GroupLabel     `json:"labels"`
	ColorIndices     []*int                 `json:"color_indices"`
	IncludeUnpainted bool                   `json:"include_unpainted"`
	ParticipantIDs   []core.ParticipantID   `json:"participant_ids" binding:"required"`
	Options          *stats.AnalysisOptions `json:"options"`
}

// labelArray resolves the label array of the request
func (b AnalysisBody) labelArray() []votes.GroupLabel {
	if b.Labels == nil && b.ColorIndices != nil {
		return votes.LabelArrayWithOptionalUngrouped(b.ColorIndices, b.IncludeUnpainted)
	}
	return b.Labels
}

// Analyze runs one calculation through the single-flight manager
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var body AnalysisBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	labels := body.labelArray()
	if !votes.HasEnoughGroupsForAnalysis(labels) {
		respondError(c, errors.ValidationError(votes.AnalysisStatusMessage(labels)))
		return
	}

	opts := h.defaults
	if body.Options != nil {
		opts = *body.Options
	}

	catalog, err := h.analysis.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.manager.Calculate(c.Request.Context(), labels, body.ParticipantIDs, catalog, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", `"`+result.Fingerprint.Short()+`"`)
	c.JSON(http.StatusOK, gin.H{
		"status": votes.AnalysisStatusMessage(labels),
		"result": result,
	})
}

// Last returns the most recent result as json, markdown or html
func (h *AnalysisHandler) Last(c *gin.Context) {
	last := h.manager.LastResult()
	if last == nil {
		body := gin.H{"error": "no analysis has completed", "state": h.manager.State().String()}
		if err := h.manager.Err(); err != nil {
			body["last_error"] = err.Error()
		}
		c.JSON(http.StatusNotFound, body)
		return
	}
	c.Header("ETag", `"`+last.Fingerprint.Short()+`"`)

	format := c.DefaultQuery("format", "json")
	if format == "json" {
		c.JSON(http.StatusOK, last)
		return
	}

	catalog, err := h.analysis.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	r, err := report.Build("Representative statements", last.AnalysisResult, catalog)
	if err != nil {
		respondError(c, err)
		return
	}

	switch format {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(r.Markdown()))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", r.HTML())
	default:
		respondError(c, errors.InvalidInput("format must be json, markdown or html"))
	}
}

// Status reports the manager state
func (h *AnalysisHandler) Status(c *gin.Context) {
	body := gin.H{"state": h.manager.State().String(), "calculating": h.manager.IsCalculating()}
	if last := h.manager.LastResult(); last != nil {
		body["last_run_id"] = last.RunID
		body["last_finished_at"] = last.FinishedAt
	}
	c.JSON(http.StatusOK, body)
}

// errorCode maps domain sentinels onto application error codes
func errorCode(err error) string {
	switch {
	case stderrors.Is(err, core.ErrCalculationInProgress):
		return errors.CodeConflict
	case core.IsStoreUnavailable(err):
		return errors.CodeStoreUnavailable
	case stderrors.Is(err, core.ErrLabelMismatch), stderrors.Is(err, core.ErrInvalidVote):
		return errors.CodeInvalidInput
	case core.IsNotFoundError(err):
		return errors.CodeNotFound
	default:
		return errors.GetCode(err)
	}
}

func respondError(c *gin.Context, err error) {
	code := errorCode(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		internal.DefaultLogger.Error("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
