package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"digitaltwin/database"
)

// Defaults and caps for the attack log read API
const (
	defaultAttackLogHours = 24
	defaultAttackLogLimit = 500
	maxAttackLogLimit     = 1000
)

// Severity assigned per client-side deterrence event type. Unknown types
// still get logged, at a floor severity.
var clientEventSeverities = map[string]int{
	"DEVTOOLS_DETECTED": 5,
	"VIEW_SOURCE":       5,
	"SAVE_PAGE":         5,
	"COPY_ATTEMPT":      4,
	"KEYBOARD_SHORTCUT": 4,
	"RIGHT_CLICK":       3,
}

const clientEventDefaultSeverity = 2

// SecurityController serves the live-telemetry read API and the client
// event logger
type SecurityController struct {
	Attacks *database.AttackStore
}

// NewSecurityController creates a security controller on the given store
func NewSecurityController(attacks *database.AttackStore) *SecurityController {
	return &SecurityController{Attacks: attacks}
}

// GetAttackLogs returns recent attack records, newest first. Responses are
// never cached: the dashboard's selling point is that a blocked request
// shows up on the next poll.
func (sc *SecurityController) GetAttackLogs(c *gin.Context) {
	hours := parseIntQuery(c, "hours", defaultAttackLogHours)
	if hours <= 0 {
		hours = defaultAttackLogHours
	}
	limit := normalizeAttackLogLimit(parseIntQuery(c, "limit", defaultAttackLogLimit))

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	records, err := sc.Attacks.QueryRecent(since, limit, database.RecentFilter{
		Type:        c.Query("type"),
		MinSeverity: parseIntQuery(c, "minSeverity", 0),
	})
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, records)
}

// GetHourlyStats returns 24 zero-filled hourly buckets of tiered counts
func (sc *SecurityController) GetHourlyStats(c *gin.Context) {
	buckets, err := sc.Attacks.HourlyStats(time.Now())
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, buckets)
}

// GetThreatActivity returns overall counters for the dashboard header
func (sc *SecurityController) GetThreatActivity(c *gin.Context) {
	activity, err := sc.Attacks.Activity()
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, activity)
}

// ClientEventRequest is a best-effort telemetry report from the deterrence
// layer running in the visitor's browser
type ClientEventRequest struct {
	Type     string                 `json:"type"`
	Metadata map[string]interface{} `json:"metadata"`
}

// LogClientEvent records a client-side deterrence event. The call never
// fails the caller: malformed payloads and storage errors degrade to
// success=false with status 200, and geo enrichment is skipped so the
// append stays near-instant.
func (sc *SecurityController) LogClientEvent(c *gin.Context) {
	var request ClientEventRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Type == "" {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	severity, ok := clientEventSeverities[request.Type]
	if !ok {
		severity = clientEventDefaultSeverity
	}

	ip := c.ClientIP()
	if ip == "" {
		ip = database.UnknownIP
	}

	record := &database.AttackRecord{
		IP:       ip,
		Type:     database.AttackTypeClientPrefix + request.Type,
		Severity: severity,
	}
	if err := sc.Attacks.Insert(record); err != nil {
		log.Printf("Failed to log client event %s: %v", request.Type, err)
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	if len(request.Metadata) > 0 {
		log.Printf("Client event %s metadata: %v", request.Type, request.Metadata)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// normalizeAttackLogLimit treats non-positive limits like an absent
// parameter and clamps oversized ones to the hard cap
func normalizeAttackLogLimit(limit int) int {
	if limit <= 0 {
		return defaultAttackLogLimit
	}
	if limit > maxAttackLogLimit {
		return maxAttackLogLimit
	}
	return limit
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
