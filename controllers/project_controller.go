package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"digitaltwin/database"
	"digitaltwin/security"
)

// ProjectController handles the portfolio's project content: public reads
// plus audited admin mutations
type ProjectController struct {
	DB     *gorm.DB
	Audits *database.AuditStore
}

// NewProjectController creates a project controller on the given connection
func NewProjectController(db *gorm.DB, audits *database.AuditStore) *ProjectController {
	return &ProjectController{DB: db, Audits: audits}
}

// ProjectRequest contains the project payload for create and update
type ProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
	LiveURL     string `json:"live_url"`
	RepoURL     string `json:"repo_url"`
	Featured    bool   `json:"featured"`
	SortOrder   int    `json:"sort_order"`
}

// GetProjects returns all projects for public display
func (pc *ProjectController) GetProjects(c *gin.Context) {
	var projects []database.Project
	err := pc.DB.Order("featured DESC, sort_order ASC, id ASC").Find(&projects).Error
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// CreateProject creates a new portfolio project (admin only)
func (pc *ProjectController) CreateProject(c *gin.Context) {
	_, err := RequireAdminSession(pc.DB, c)
	if err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectCreate, database.AuditStatusDenied, strPtr("project"), nil, nil)
		sanitized := security.Sanitize(err, "PROJ-CREATE-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	var request ProjectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectCreate, database.AuditStatusFailed, strPtr("project"), nil, map[string]interface{}{
			"reason": "invalid request data",
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request data"})
		return
	}

	project := database.Project{
		Title:       request.Title,
		Description: request.Description,
		TechStack:   request.TechStack,
		LiveURL:     request.LiveURL,
		RepoURL:     request.RepoURL,
		Featured:    request.Featured,
		SortOrder:   request.SortOrder,
	}
	if err := pc.DB.Create(&project).Error; err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectCreate, database.AuditStatusFailed, strPtr("project"), nil, map[string]interface{}{
			"reason": "create failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "project create", Err: err}, "PROJ-CREATE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(pc.Audits, c, database.ActionProjectCreate, database.AuditStatusSuccess, strPtr("project"), strPtr(fmt.Sprint(project.ID)), map[string]interface{}{
		"title": project.Title,
	})

	c.JSON(http.StatusCreated, gin.H{"status": "success", "message": "Project created", "project": project})
}

// UpdateProject updates an existing project (admin only)
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	_, err := RequireAdminSession(pc.DB, c)
	if err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusDenied, strPtr("project"), nil, nil)
		sanitized := security.Sanitize(err, "PROJ-UPDATE-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusFailed, strPtr("project"), nil, map[string]interface{}{
			"reason": "invalid project id",
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid project ID"})
		return
	}

	var request ProjectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
			"reason": "invalid request data",
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request data"})
		return
	}

	var project database.Project
	err = pc.DB.Where("id = ?", uint(projectID)).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
				"reason": "Project not found",
			})
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Project not found"})
			return
		}
		appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
			"reason": "lookup failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "project lookup", Err: err}, "PROJ-UPDATE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	updates := map[string]interface{}{
		"title":       request.Title,
		"description": request.Description,
		"tech_stack":  request.TechStack,
		"live_url":    request.LiveURL,
		"repo_url":    request.RepoURL,
		"featured":    request.Featured,
		"sort_order":  request.SortOrder,
	}
	if err := pc.DB.Model(&project).Updates(updates).Error; err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
			"reason": "update failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "project update", Err: err}, "PROJ-UPDATE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(pc.Audits, c, database.ActionProjectUpdate, database.AuditStatusSuccess, strPtr("project"), strPtr(fmt.Sprint(project.ID)), map[string]interface{}{
		"title": request.Title,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Project updated", "project": project})
}

// DeleteProject removes a project (admin only)
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	_, err := RequireAdminSession(pc.DB, c)
	if err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusDenied, strPtr("project"), nil, nil)
		sanitized := security.Sanitize(err, "PROJ-DELETE-403")
		c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusFailed, strPtr("project"), nil, map[string]interface{}{
			"reason": "invalid project id",
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid project ID"})
		return
	}

	var project database.Project
	err = pc.DB.Where("id = ?", uint(projectID)).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
				"reason": "Project not found",
			})
			c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "Project not found"})
			return
		}
		appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
			"reason": "lookup failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "project lookup", Err: err}, "PROJ-DELETE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	if err := pc.DB.Delete(&project).Error; err != nil {
		appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusFailed, strPtr("project"), strPtr(c.Param("id")), map[string]interface{}{
			"reason": "delete failed",
		})
		sanitized := security.Sanitize(&security.StorageError{Op: "project delete", Err: err}, "PROJ-DELETE-500")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": sanitized.Message})
		return
	}

	appendAudit(pc.Audits, c, database.ActionProjectDelete, database.AuditStatusSuccess, strPtr("project"), strPtr(fmt.Sprint(project.ID)), map[string]interface{}{
		"title": project.Title,
	})

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Project deleted"})
}
