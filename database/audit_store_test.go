package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEntry(t *testing.T, store *AuditStore, userID uint, action, status string, createdAt time.Time) {
	t.Helper()
	entry := &AuditLogEntry{
		UserID:    userID,
		UserEmail: "admin@example.com",
		Action:    action,
		Status:    status,
		Metadata:  "{}",
		CreatedAt: createdAt,
	}
	require.NoError(t, store.Append(entry))
}

func TestAuditStoreAppendSetsCreatedAt(t *testing.T) {
	store := NewAuditStore(openTestDB(t))

	entry := &AuditLogEntry{UserID: 1, Action: ActionUserRoleUpdate, Status: AuditStatusSuccess}
	require.NoError(t, store.Append(entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditStoreQueryFiltersConjunction(t *testing.T) {
	store := NewAuditStore(openTestDB(t))
	now := time.Now().UTC()

	appendEntry(t, store, 1, ActionUserRoleUpdate, AuditStatusSuccess, now.Add(-time.Hour))
	appendEntry(t, store, 1, ActionUserRoleUpdate, AuditStatusFailed, now.Add(-30*time.Minute))
	appendEntry(t, store, 2, ActionProjectCreate, AuditStatusSuccess, now.Add(-20*time.Minute))
	appendEntry(t, store, 2, ActionUserRoleUpdate, AuditStatusDenied, now.Add(-10*time.Minute))

	// No filters: everything, newest first
	entries, total, err := store.Query(AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, entries, 4)
	assert.Equal(t, AuditStatusDenied, entries[0].Status)

	// Single filter
	entries, total, err = store.Query(AuditFilter{Action: ActionUserRoleUpdate})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, entries, 3)

	// Conjunction of filters
	entries, total, err = store.Query(AuditFilter{UserID: 1, Action: ActionUserRoleUpdate, Status: AuditStatusFailed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, AuditStatusFailed, entries[0].Status)

	// Date range
	start := now.Add(-25 * time.Minute)
	end := now.Add(-5 * time.Minute)
	entries, total, err = store.Query(AuditFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)
}

func TestAuditStoreQueryPagination(t *testing.T) {
	store := NewAuditStore(openTestDB(t))
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		appendEntry(t, store, 1, ActionViewAuditLogs, AuditStatusSuccess, now.Add(time.Duration(-i)*time.Minute))
	}

	entries, total, err := store.Query(AuditFilter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "total counts matches before limit/offset")
	assert.Len(t, entries, 2)

	entries, _, err = store.Query(AuditFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAuditStoreStats(t *testing.T) {
	store := NewAuditStore(openTestDB(t))
	now := time.Now().UTC()

	appendEntry(t, store, 1, ActionUserRoleUpdate, AuditStatusSuccess, now.Add(-time.Hour))
	appendEntry(t, store, 1, ActionUserRoleUpdate, AuditStatusFailed, now.Add(-time.Hour))
	appendEntry(t, store, 1, ActionProjectCreate, AuditStatusSuccess, now.Add(-2*time.Hour))
	appendEntry(t, store, 1, ActionProjectCreate, AuditStatusSuccess, now.Add(-3*time.Hour))
	appendEntry(t, store, 1, ActionProjectCreate, AuditStatusSuccess, now.Add(-48*time.Hour))

	stats, err := store.Stats(now)
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(4), stats.Recent)

	byStatus := map[string]int64{}
	for _, row := range stats.ByStatus {
		byStatus[row.Status] = row.Count
	}
	assert.Equal(t, int64(4), byStatus[AuditStatusSuccess])
	assert.Equal(t, int64(1), byStatus[AuditStatusFailed])

	require.NotEmpty(t, stats.TopActions)
	assert.Equal(t, ActionProjectCreate, stats.TopActions[0].Action)
	assert.Equal(t, int64(3), stats.TopActions[0].Count)
}

func TestEncodeMetadata(t *testing.T) {
	assert.Equal(t, "{}", EncodeMetadata(nil))
	assert.Equal(t, "{}", EncodeMetadata(map[string]interface{}{}))

	encoded := EncodeMetadata(map[string]interface{}{"reason": "User not found"})
	assert.Contains(t, encoded, `"reason"`)
	assert.Contains(t, encoded, "User not found")
}
