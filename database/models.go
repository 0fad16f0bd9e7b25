package database

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system
type User struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255"`
	PasswordHash string `json:"-"`
	Role         string `json:"role" gorm:"size:20;index"`
}

// Project represents a portfolio project entry
type Project struct {
	gorm.Model
	Title       string `json:"title" gorm:"size:200;not null"`
	Description string `json:"description" gorm:"type:text"`
	TechStack   string `json:"tech_stack" gorm:"size:500"`
	LiveURL     string `json:"live_url" gorm:"size:500"`
	RepoURL     string `json:"repo_url" gorm:"size:500"`
	Featured    bool   `json:"featured"`
	SortOrder   int    `json:"sort_order"`
}

// AttackRecord represents one detected-and-blocked malicious or suspicious
// request or action. Geo fields stay null until enrichment completes and
// stay null forever when it fails; readers must treat that as "pending or
// unavailable", not as an error.
type AttackRecord struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	IP        string    `gorm:"size:64;index" json:"ip"`
	Type      string    `gorm:"size:100;not null;index" json:"type"`
	Severity  int       `gorm:"not null" json:"severity"`
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	City      *string   `gorm:"size:100" json:"city"`
	Country   *string   `gorm:"size:100" json:"country"`
	Latitude  *string   `gorm:"size:32" json:"latitude"`
	Longitude *string   `gorm:"size:32" json:"longitude"`
}

// TableName sets the table name for attack records
func (AttackRecord) TableName() string {
	return "attack_records"
}

// AuditLogEntry represents a privileged operation's attempt and outcome.
// Entries are append-only: no application code updates or deletes them.
type AuditLogEntry struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	UserEmail    string    `gorm:"size:255" json:"user_email"`
	Action       string    `gorm:"size:50;not null;index" json:"action"`
	ResourceType *string   `gorm:"size:50" json:"resource_type"`
	ResourceID   *string   `gorm:"size:100" json:"resource_id"`
	Status       string    `gorm:"size:20;not null;index" json:"status"`
	Metadata     string    `gorm:"type:text" json:"metadata"`
	IPAddress    *string   `gorm:"size:64" json:"ip_address"`
	UserAgent    *string   `gorm:"size:255" json:"user_agent"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name for audit log entries
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

// Constants for status and type values
const (
	// User roles
	RoleAdmin = "admin"
	RoleUser  = "user"

	// Audit entry statuses
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
	AuditStatusDenied  = "denied"

	// Audit action tags
	ActionUserRoleUpdate  = "USER_ROLE_UPDATE"
	ActionProjectCreate   = "PROJECT_CREATE"
	ActionProjectUpdate   = "PROJECT_UPDATE"
	ActionProjectDelete   = "PROJECT_DELETE"
	ActionViewAuditLogs   = "VIEW_AUDIT_LOGS"
	ActionViewAuditStats  = "VIEW_AUDIT_STATS"
	ActionAttackLogPurge  = "ATTACK_LOG_PURGE"

	// Attack record types not owned by the pattern detector
	AttackTypeRateLimit   = "RATE_LIMIT"
	AttackTypeBotDetected = "BOT_DETECTED"
	AttackTypeWAFDenied   = "WAF_DENIED"

	// Prefixes for derived attack types
	AttackTypeShieldPrefix = "SHIELD:"
	AttackTypeClientPrefix = "CLIENT:"

	// Placeholder when the client address cannot be determined
	UnknownIP = "unknown"
)
