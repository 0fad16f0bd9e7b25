package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digitaltwin/database"
)

func TestLogClientEventDevtools(t *testing.T) {
	f := newFixture(t)

	// No resolvable client address on this request
	req := httptest.NewRequest(http.MethodPost, "/api/security/client-events",
		bytes.NewReader([]byte(`{"type":"DEVTOOLS_DETECTED","metadata":{"page":"/projects"}}`)))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ""
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	records := f.attackRecords(t)
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, database.UnknownIP, got.IP)
	assert.Equal(t, "CLIENT:DEVTOOLS_DETECTED", got.Type)
	assert.Equal(t, 5, got.Severity)
	assert.False(t, got.Timestamp.IsZero())

	// Client events are never geo-enriched
	assert.Nil(t, got.City)
	assert.Nil(t, got.Country)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
}

func TestLogClientEventSeverityMapping(t *testing.T) {
	f := newFixture(t)

	cases := map[string]int{
		"VIEW_SOURCE":       5,
		"COPY_ATTEMPT":      4,
		"RIGHT_CLICK":       3,
		"SOMETHING_NOVEL":   2,
		"KEYBOARD_SHORTCUT": 4,
	}
	for eventType := range cases {
		w := f.request(t, http.MethodPost, "/api/security/client-events",
			`{"type":"`+eventType+`"}`)
		assertStatus(t, w, http.StatusOK)
	}

	records := f.attackRecords(t)
	require.Len(t, records, len(cases))
	for _, record := range records {
		eventType := record.Type[len(database.AttackTypeClientPrefix):]
		assert.Equal(t, cases[eventType], record.Severity, "severity for %s", eventType)
		assert.Equal(t, "203.0.113.77", record.IP)
	}
}

func TestLogClientEventMalformedPayloadDegrades(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`not json`, `{}`, `{"type":""}`} {
		w := f.request(t, http.MethodPost, "/api/security/client-events", body)
		assertStatus(t, w, http.StatusOK)
		assert.JSONEq(t, `{"success":false}`, w.Body.String())
	}

	assert.Empty(t, f.attackRecords(t))
}

func TestGetAttackLogsIsPublicAndUncached(t *testing.T) {
	f := newFixture(t)

	now := time.Now().UTC()
	record := database.AttackRecord{IP: "203.0.113.9", Type: "RATE_LIMIT", Severity: 6, Timestamp: now.Add(-time.Minute)}
	require.NoError(t, f.attacks.Insert(&record))

	f.actAsNobody()
	w := f.request(t, http.MethodGet, "/api/security/attack-logs", "")

	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var records []database.AttackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "203.0.113.9", records[0].IP)
}

func TestNormalizeAttackLogLimit(t *testing.T) {
	assert.Equal(t, defaultAttackLogLimit, normalizeAttackLogLimit(0))
	assert.Equal(t, defaultAttackLogLimit, normalizeAttackLogLimit(-5))
	assert.Equal(t, 200, normalizeAttackLogLimit(200))
	assert.Equal(t, maxAttackLogLimit, normalizeAttackLogLimit(maxAttackLogLimit))
	assert.Equal(t, maxAttackLogLimit, normalizeAttackLogLimit(5000))
}

func TestGetAttackLogsFilterParams(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	inserts := []database.AttackRecord{
		{IP: "203.0.113.1", Type: "RATE_LIMIT", Severity: 6, Timestamp: now.Add(-time.Hour)},
		{IP: "203.0.113.2", Type: "SQL_INJECTION:DROP_TABLE", Severity: 10, Timestamp: now.Add(-time.Minute)},
		{IP: "203.0.113.3", Type: "BOT_DETECTED", Severity: 3, Timestamp: now.Add(-30 * time.Hour)},
	}
	for i := range inserts {
		record := inserts[i]
		require.NoError(t, f.attacks.Insert(&record))
	}

	// Default window is 24h, so the 30h-old record is out
	w := f.request(t, http.MethodGet, "/api/security/attack-logs", "")
	var records []database.AttackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)

	w = f.request(t, http.MethodGet, "/api/security/attack-logs?minSeverity=7", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "SQL_INJECTION:DROP_TABLE", records[0].Type)

	w = f.request(t, http.MethodGet, "/api/security/attack-logs?type=RATE_LIMIT", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "203.0.113.1", records[0].IP)
}
