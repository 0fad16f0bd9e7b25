package database

import (
	"log"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
)

// Hard cap on rows returned by a single audit query
const maxAuditQueryLimit = 500

// AuditStore persists and reads the privileged-operation trail. Appends are
// synchronous and mandatory on every privileged path; the trail's
// completeness is a compliance property, not best-effort telemetry.
type AuditStore struct {
	db *gorm.DB
}

// NewAuditStore creates an audit log store on the given connection
func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

// AuditFilter narrows a Query call; all set fields apply conjunctively
type AuditFilter struct {
	UserID    uint
	Action    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// StatusCount is one row of the by-status aggregate
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ActionCount is one row of the top-actions aggregate
type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

// AuditStats aggregates the trail for the admin dashboard
type AuditStats struct {
	Total      int64         `json:"total"`
	Recent     int64         `json:"recent"`
	ByStatus   []StatusCount `json:"byStatus"`
	TopActions []ActionCount `json:"topActions"`
}

// Append writes one audit entry. Callers invoke this exactly once per
// privileged attempt, on whichever branch was taken (success, failed or
// denied).
func (s *AuditStore) Append(entry *AuditLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.db.Create(entry).Error
}

// Query returns matching entries newest first, plus the total count of
// matches before limit/offset were applied.
func (s *AuditStore) Query(filter AuditFilter) ([]AuditLogEntry, int64, error) {
	query := s.db.Model(&AuditLogEntry{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxAuditQueryLimit {
		limit = maxAuditQueryLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var entries []AuditLogEntry
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}

// Stats aggregates the whole trail: total size, last-24h volume, counts per
// status and the ten most frequent actions.
func (s *AuditStore) Stats(now time.Time) (AuditStats, error) {
	var stats AuditStats

	if err := s.db.Model(&AuditLogEntry{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	dayAgo := now.UTC().Add(-24 * time.Hour)
	if err := s.db.Model(&AuditLogEntry{}).
		Where("created_at >= ?", dayAgo).
		Count(&stats.Recent).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&AuditLogEntry{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&stats.ByStatus).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&AuditLogEntry{}).
		Select("action, COUNT(*) as count").
		Group("action").
		Order("count DESC").
		Limit(10).
		Scan(&stats.TopActions).Error; err != nil {
		return stats, err
	}

	return stats, nil
}

// EncodeMetadata serializes an audit metadata payload. Metadata is opaque to
// readers, so a failed encode degrades to an empty object rather than
// blocking the append.
func EncodeMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("Failed to encode audit metadata: %v", err)
		return "{}"
	}
	return string(raw)
}
