package handlers

import (
	"net/http"

	agreementRepoPkg "carhire/database/repository/agreement"
	sourceRepoPkg "carhire/database/repository/source"
	"carhire/models"
	"carhire/services/health"

	"github.com/gin-gonic/gin"
)

// ListAgreementsHandler returns the calling agent's agreements.
func ListAgreementsHandler(agreements agreementRepoPkg.AgreementRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := agreements.ListByAgent(agentID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list agreements", "details": err.Error()})
			return
		}
		if list == nil {
			list = []models.Agreement{}
		}
		c.JSON(http.StatusOK, gin.H{"agreements": list})
	}
}

// ListSourceHealthHandler returns the live health state of every configured
// source.
func ListSourceHealthHandler(tracker health.Tracker, sources sourceRepoPkg.SourceRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := sources.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sources", "details": err.Error()})
			return
		}
		snapshots := make([]models.SourceHealth, 0, len(list))
		for _, src := range list {
			snapshots = append(snapshots, tracker.Snapshot(src.ID))
		}
		c.JSON(http.StatusOK, gin.H{"sources": snapshots})
	}
}

// GetSourceHealthHandler returns the live health state of one source.
func GetSourceHealthHandler(tracker health.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, tracker.Snapshot(c.Param("sourceID")))
	}
}

// ResetSourceHealthHandler clears a source's backoff immediately, recording
// who asked for the audit trail.
func ResetSourceHealthHandler(tracker health.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceID := c.Param("sourceID")
		actor := c.GetHeader("X-Actor")
		if actor == "" {
			actor = agentID(c)
		}
		tracker.Reset(sourceID, actor)
		c.JSON(http.StatusOK, tracker.Snapshot(sourceID))
	}
}
