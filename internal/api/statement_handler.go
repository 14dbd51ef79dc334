package api

import (
	"fmt"
	"net/http"

	"gorepness/app"
	"gorepness/domain/core"
	"gorepness/internal/errors"

	"github.com/gin-gonic/gin"
)

// StatementHandler serves the statement catalog and the vote layer
type StatementHandler struct {
	analysis  *app.AnalysisService
	voteLayer *app.VoteLayerService
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(analysis *app.AnalysisService, voteLayer *app.VoteLayerService) *StatementHandler {
	return &StatementHandler{analysis: analysis, voteLayer: voteLayer}
}

// List returns every statement ordered by id
func (h *StatementHandler) List(c *gin.Context) {
	catalog, err := h.analysis.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statements": catalog.Statements()})
}

// Get returns one statement
func (h *StatementHandler) Get(c *gin.Context) {
	tid, err := core.ParseStatementID(c.Param("tid"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	catalog, err := h.analysis.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	statement, ok := catalog[tid]
	if !ok {
		respondError(c, fmt.Errorf("%w %s", core.ErrStatementNotFound, tid))
		return
	}
	c.JSON(http.StatusOK, statement)
}

type voteLayerBody struct {
	ParticipantIDs []core.ParticipantID `json:"participant_ids" binding:"required"`
}

// Votes returns each requested participant's vote on one statement
func (h *StatementHandler) Votes(c *gin.Context) {
	tid, err := core.ParseStatementID(c.Param("tid"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	var body voteLayerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	points, err := h.voteLayer.ParticipantVotesForStatement(c.Request.Context(), tid, body.ParticipantIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tid": tid, "participants": points})
}
