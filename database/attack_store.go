package database

import (
	"time"

	"gorm.io/gorm"
)

// Hard cap on rows returned by a single read, regardless of caller input.
const maxAttackQueryLimit = 1000

// Severity tier boundaries used for dashboard bucketing
const (
	severityMediumFloor = 4
	severityHighFloor   = 7
)

// AttackStore persists and reads attack records
type AttackStore struct {
	db *gorm.DB
}

// NewAttackStore creates an attack record store on the given connection
func NewAttackStore(db *gorm.DB) *AttackStore {
	return &AttackStore{db: db}
}

// RecentFilter narrows a QueryRecent call. Zero values mean "no filter".
type RecentFilter struct {
	Type        string
	MinSeverity int
}

// HourlyBucket is one hour of tiered attack counts
type HourlyBucket struct {
	Time string `json:"time"`
	High int    `json:"high"`
	Med  int    `json:"med"`
	Low  int    `json:"low"`
}

// ThreatActivity summarizes overall detection volume
type ThreatActivity struct {
	Threats int64 `json:"threats"`
	Blocked int64 `json:"blocked"`
}

// Insert persists a new attack record and assigns its ID. This runs
// synchronously on the request path so the record is visible to readers
// before the blocked response goes out.
func (s *AttackStore) Insert(record *AttackRecord) error {
	if record.IP == "" {
		record.IP = UnknownIP
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	return s.db.Create(record).Error
}

// UpdateGeo fills the geo columns of a previously inserted record. Only the
// four geo fields are touched; id, ip, type, severity and timestamp are
// immutable after insert.
func (s *AttackStore) UpdateGeo(id int64, city, country, latitude, longitude string) error {
	return s.db.Model(&AttackRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"city":      city,
		"country":   country,
		"latitude":  latitude,
		"longitude": longitude,
	}).Error
}

// QueryRecent returns records newer than since, newest first. The limit is
// capped server-side so a caller can never request an unbounded response.
func (s *AttackStore) QueryRecent(since time.Time, limit int, filter RecentFilter) ([]AttackRecord, error) {
	if limit <= 0 || limit > maxAttackQueryLimit {
		limit = maxAttackQueryLimit
	}

	query := s.db.Where("timestamp >= ?", since)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.MinSeverity > 0 {
		query = query.Where("severity >= ?", filter.MinSeverity)
	}

	var records []AttackRecord
	err := query.Order("timestamp DESC, id DESC").Limit(limit).Find(&records).Error
	return records, err
}

// HourlyStats buckets the trailing 24 hours of records by severity tier
// (low <4, medium 4-6, high >=7). All 24 hours are present in the output
// even when empty, oldest hour first.
func (s *AttackStore) HourlyStats(now time.Time) ([]HourlyBucket, error) {
	now = now.UTC()
	windowStart := now.Truncate(time.Hour).Add(-23 * time.Hour)

	var records []AttackRecord
	err := s.db.Select("timestamp", "severity").
		Where("timestamp >= ?", windowStart).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]HourlyBucket, 24)
	index := make(map[string]int, 24)
	for i := 0; i < 24; i++ {
		hour := windowStart.Add(time.Duration(i) * time.Hour)
		label := hour.Format("15:00")
		buckets[i] = HourlyBucket{Time: label}
		index[hour.Format("2006-01-02 15")] = i
	}

	for _, record := range records {
		key := record.Timestamp.UTC().Format("2006-01-02 15")
		i, ok := index[key]
		if !ok {
			continue
		}
		switch {
		case record.Severity >= severityHighFloor:
			buckets[i].High++
		case record.Severity >= severityMediumFloor:
			buckets[i].Med++
		default:
			buckets[i].Low++
		}
	}

	return buckets, nil
}

// Activity returns overall threat counters for the dashboard header. Every
// recorded threat was blocked, so the two counters currently match.
func (s *AttackStore) Activity() (ThreatActivity, error) {
	var total int64
	if err := s.db.Model(&AttackRecord{}).Count(&total).Error; err != nil {
		return ThreatActivity{}, err
	}
	return ThreatActivity{Threats: total, Blocked: total}, nil
}

// PurgeOlderThan deletes records older than the cutoff. This is the only
// deletion path and exists for explicit administrative maintenance.
func (s *AttackStore) PurgeOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("timestamp < ?", cutoff).Delete(&AttackRecord{})
	return result.RowsAffected, result.Error
}
