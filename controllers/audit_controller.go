package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"digitaltwin/database"
	"digitaltwin/security"
)

// AuditController serves the admin-only audit trail read API
type AuditController struct {
	DB     *gorm.DB
	Audits *database.AuditStore
}

// NewAuditController creates an audit controller on the given connection
func NewAuditController(db *gorm.DB, audits *database.AuditStore) *AuditController {
	return &AuditController{DB: db, Audits: audits}
}

// GetAuditLogs returns filtered audit entries. Viewing the trail is itself a
// privileged operation and produces its own entry on every attempt.
func (ac *AuditController) GetAuditLogs(c *gin.Context) {
	_, err := RequireAdminSession(ac.DB, c)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionViewAuditLogs, database.AuditStatusDenied, nil, nil, nil)
		sanitized := security.Sanitize(err, "AUDIT-VIEW-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	filter := database.AuditFilter{
		UserID: uint(parseIntQuery(c, "userId", 0)),
		Action: c.Query("action"),
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if start, ok := parseDateQuery(c, "startDate"); ok {
		filter.StartDate = &start
	}
	if end, ok := parseDateQuery(c, "endDate"); ok {
		filter.EndDate = &end
	}

	entries, total, err := ac.Audits.Query(filter)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionViewAuditLogs, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "query failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "audit query", Err: err}, "AUDIT-VIEW-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(ac.Audits, c, database.ActionViewAuditLogs, database.AuditStatusSuccess, nil, nil, map[string]interface{}{
		"filters": gin.H{
			"userId":    filter.UserID,
			"action":    filter.Action,
			"status":    filter.Status,
			"limit":     filter.Limit,
			"offset":    filter.Offset,
			"startDate": c.Query("startDate"),
			"endDate":   c.Query("endDate"),
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"logs":   entries,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetAuditStats returns aggregate statistics over the audit trail
func (ac *AuditController) GetAuditStats(c *gin.Context) {
	_, err := RequireAdminSession(ac.DB, c)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionViewAuditStats, database.AuditStatusDenied, nil, nil, nil)
		sanitized := security.Sanitize(err, "AUDIT-STATS-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	stats, err := ac.Audits.Stats(time.Now())
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionViewAuditStats, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "stats query failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "audit stats", Err: err}, "AUDIT-STATS-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(ac.Audits, c, database.ActionViewAuditStats, database.AuditStatusSuccess, nil, nil, nil)

	c.JSON(http.StatusOK, stats)
}

// parseDateQuery accepts RFC3339 timestamps or plain dates
func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
