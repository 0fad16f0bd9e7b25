package controllers

import (
	"log"

	"github.com/gin-gonic/gin"

	"digitaltwin/database"
)

// actorFromContext recovers the caller's identity as captured by the auth
// middleware. Both values may be zero for an unauthenticated caller.
func actorFromContext(c *gin.Context) (uint, string) {
	var userID uint
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			userID = id
		}
	}
	var email string
	if v, exists := c.Get("email"); exists {
		if e, ok := v.(string); ok {
			email = e
		}
	}
	return userID, email
}

func clientIPPtr(c *gin.Context) *string {
	ip := c.ClientIP()
	if ip == "" {
		return nil
	}
	return &ip
}

func userAgentPtr(c *gin.Context) *string {
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		return nil
	}
	return &ua
}

// appendAudit writes exactly one trail entry for a privileged attempt.
// Actor identity comes from the request context so denied attempts are
// attributed even when no user row exists anymore. A failed append is a
// serious condition and gets its own log line, but the action's outcome has
// already been decided and is not rolled back.
func appendAudit(audits *database.AuditStore, c *gin.Context, action, status string, resourceType, resourceID *string, metadata map[string]interface{}) {
	userID, email := actorFromContext(c)
	entry := &database.AuditLogEntry{
		UserID:       userID,
		UserEmail:    email,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       status,
		Metadata:     database.EncodeMetadata(metadata),
		IPAddress:    clientIPPtr(c),
		UserAgent:    userAgentPtr(c),
	}
	if err := audits.Append(entry); err != nil {
		log.Printf("AUDIT APPEND FAILED action=%s status=%s: %v", action, status, err)
	}
}

func strPtr(s string) *string {
	return &s
}
