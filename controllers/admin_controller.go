package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"digitaltwin/database"
	"digitaltwin/security"
)

// AdminController handles privileged user and maintenance actions
type AdminController struct {
	DB      *gorm.DB
	Audits  *database.AuditStore
	Attacks *database.AttackStore
}

// NewAdminController creates an admin controller on the given stores
func NewAdminController(db *gorm.DB, audits *database.AuditStore, attacks *database.AttackStore) *AdminController {
	return &AdminController{DB: db, Audits: audits, Attacks: attacks}
}

// SetUserRoleRequest contains the role change payload
type SetUserRoleRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// SetUserRole changes a user's role by email. Every attempt leaves exactly
// one audit entry on whichever branch is taken.
func (ac *AdminController) SetUserRole(c *gin.Context) {
	_, err := RequireAdminSession(ac.DB, c)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusDenied, nil, nil, nil)
		sanitized := security.Sanitize(err, "ROLE-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	var request SetUserRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "invalid request data",
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request data"})
		return
	}

	role := strings.ToLower(request.Role)
	if role != database.RoleAdmin && role != database.RoleUser {
		appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "unknown role",
			"role":   request.Role,
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Role must be admin or user"})
		return
	}

	var user database.User
	err = ac.DB.Where("email = ?", strings.ToLower(request.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusFailed, strPtr("user"), nil, map[string]interface{}{
				"reason": "User not found",
				"email":  request.Email,
			})
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "User not found"})
			return
		}
		appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusFailed, strPtr("user"), nil, map[string]interface{}{
			"reason": "lookup failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "user lookup", Err: err}, "ROLE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	oldRole := user.Role
	if err := ac.DB.Model(&user).Update("role", role).Error; err != nil {
		appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusFailed, strPtr("user"), strPtr(fmt.Sprint(user.ID)), map[string]interface{}{
			"reason": "update failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "role update", Err: err}, "ROLE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(ac.Audits, c, database.ActionUserRoleUpdate, database.AuditStatusSuccess, strPtr("user"), strPtr(fmt.Sprint(user.ID)), map[string]interface{}{
		"email":    user.Email,
		"old_role": oldRole,
		"new_role": role,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Role updated"})
}

// PurgeAttackLogs deletes attack records older than the requested number of
// days. This is the one sanctioned deletion path for the attack stream and
// exists for rare administrative maintenance.
func (ac *AdminController) PurgeAttackLogs(c *gin.Context) {
	_, err := RequireAdminSession(ac.DB, c)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionAttackLogPurge, database.AuditStatusDenied, nil, nil, nil)
		sanitized := security.Sanitize(err, "PURGE-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	days := parseIntQuery(c, "days", 30)
	if days < 1 {
		appendAudit(ac.Audits, c, database.ActionAttackLogPurge, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "invalid retention window",
			"days":   days,
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Retention window must be at least one day"})
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	purged, err := ac.Attacks.PurgeOlderThan(cutoff)
	if err != nil {
		appendAudit(ac.Audits, c, database.ActionAttackLogPurge, database.AuditStatusFailed, nil, nil, map[string]interface{}{
			"reason": "purge failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "attack log purge", Err: err}, "PURGE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(ac.Audits, c, database.ActionAttackLogPurge, database.AuditStatusSuccess, nil, nil, map[string]interface{}{
		"days":   days,
		"purged": purged,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": fmt.Sprintf("Purged %d records", purged)})
}
