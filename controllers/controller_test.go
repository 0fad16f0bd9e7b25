package controllers

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"digitaltwin/config"
	"digitaltwin/database"
	"digitaltwin/utils"
)

// fixture wires the controllers against an isolated in-memory database. The
// actor fields stand in for the auth middleware: set them before a request to
// simulate a valid token for that identity.
type fixture struct {
	db      *gorm.DB
	audits  *database.AuditStore
	attacks *database.AttackStore
	router  *gin.Engine

	actorID    uint
	actorEmail string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitConfig()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	f := &fixture{
		db:      db,
		audits:  database.NewAuditStore(db),
		attacks: database.NewAttackStore(db),
	}

	auth := NewAuthController(db)
	telemetry := NewSecurityController(f.attacks)
	audit := NewAuditController(db, f.audits)
	admin := NewAdminController(db, f.audits, f.attacks)
	project := NewProjectController(db, f.audits)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if f.actorID != 0 {
			c.Set("userID", f.actorID)
			c.Set("email", f.actorEmail)
		}
		c.Next()
	})

	r.POST("/api/auth/login", auth.Login)
	r.GET("/api/projects", project.GetProjects)
	r.POST("/api/security/client-events", telemetry.LogClientEvent)
	r.GET("/api/security/attack-logs", telemetry.GetAttackLogs)
	r.GET("/api/admin/audit-logs", audit.GetAuditLogs)
	r.GET("/api/admin/audit-stats", audit.GetAuditStats)
	r.PUT("/api/admin/users/role", admin.SetUserRole)
	r.DELETE("/api/admin/attack-logs/purge", admin.PurgeAttackLogs)
	r.POST("/api/admin/projects", project.CreateProject)
	r.PUT("/api/admin/projects/:id", project.UpdateProject)
	r.DELETE("/api/admin/projects/:id", project.DeleteProject)

	f.router = r
	return f
}

// actAs makes subsequent requests carry the given identity, as the auth
// middleware would after validating a token minted for that user.
func (f *fixture) actAs(userID uint, email string) {
	f.actorID = userID
	f.actorEmail = email
}

func (f *fixture) actAsNobody() {
	f.actorID = 0
	f.actorEmail = ""
}

func (f *fixture) request(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "controller-test")
	req.RemoteAddr = "203.0.113.77:5555"
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// createUser inserts a user row and returns it
func (f *fixture) createUser(t *testing.T, email, password, role string) database.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	user := database.User{Name: "Test User", Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

// auditEntries returns all trail entries for one action, oldest first
func (f *fixture) auditEntries(t *testing.T, action string) []database.AuditLogEntry {
	t.Helper()
	var entries []database.AuditLogEntry
	require.NoError(t, f.db.Where("action = ?", action).Order("id ASC").Find(&entries).Error)
	return entries
}

func (f *fixture) attackRecords(t *testing.T) []database.AttackRecord {
	t.Helper()
	var records []database.AttackRecord
	require.NoError(t, f.db.Order("id ASC").Find(&records).Error)
	return records
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
