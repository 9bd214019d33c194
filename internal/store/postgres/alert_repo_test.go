package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alertCols = []string{
	"id", "type", "address", "severity", "confidence", "evidence", "status",
	"assignee", "ack_at", "resolved_at", "created_at", "fingerprint",
}

func testAlert(now time.Time) *model.Alert {
	return &model.Alert{
		Type:        model.RuleFanOutSpike,
		Address:     "0xabc",
		Severity:    model.SeverityMedium,
		Confidence:  0.99,
		Evidence:    model.Evidence{"window": model.WindowDayOverDay, "ratio": 6.0},
		CreatedAt:   now,
		Fingerprint: "fp-1",
	}
}

func TestAlertRepo_InsertIfCooledDown_Inserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(fingerprintLockKey("fp-1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("fp-1", now.Add(-6*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs(model.RuleFanOutSpike, "0xabc", model.SeverityMedium, 0.99, sqlmock.AnyArg(), now, "fp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	a := testAlert(now)
	inserted, err := repo.InsertIfCooledDown(context.Background(), a, 6*time.Hour)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, model.AlertStatusNew, a.Status)
}

func TestAlertRepo_InsertIfCooledDown_SuppressedWithinCooldown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(fingerprintLockKey("fp-1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("fp-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	a := testAlert(now)
	inserted, err := repo.InsertIfCooledDown(context.Background(), a, 6*time.Hour)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Zero(t, a.ID)
}

func TestFingerprintLockKey_Stable(t *testing.T) {
	assert.Equal(t, fingerprintLockKey("abc"), fingerprintLockKey("abc"))
	assert.NotEqual(t, fingerprintLockKey("abc"), fingerprintLockKey("abd"))
}

func TestAlertRepo_UpdateStatus_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)

	mock.ExpectQuery("UPDATE alerts SET").
		WithArgs(int64(99), "ack", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(alertCols))

	a, err := repo.UpdateStatus(context.Background(), 99, model.AlertStatusAck, nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAlertRepo_UpdateStatus_ScansRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolved := created.Add(time.Hour)
	assignee := "oncall"

	mock.ExpectQuery("UPDATE alerts SET").
		WithArgs(int64(3), "resolved", "oncall", resolved).
		WillReturnRows(sqlmock.NewRows(alertCols).AddRow(
			int64(3), "fan_in_spike", "0xdef", "high", 0.9,
			[]byte(`{"window":"24h_vs_prev24h","delta":40}`), "resolved",
			"oncall", nil, resolved, created, "fp-3",
		))

	a, err := repo.UpdateStatus(context.Background(), 3, model.AlertStatusResolved, &assignee, resolved)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, model.RuleFanInSpike, a.Type)
	assert.Equal(t, model.AlertStatusResolved, a.Status)
	require.NotNil(t, a.Assignee)
	assert.Equal(t, "oncall", *a.Assignee)
	assert.Nil(t, a.AckAt)
	require.NotNil(t, a.ResolvedAt)
	assert.True(t, resolved.Equal(*a.ResolvedAt))
	assert.Equal(t, model.WindowDayOverDay, a.Evidence.Window())
}

func TestAlertRepo_ListQueue_QueryShape(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`CASE severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,\s+confidence DESC,\s+created_at DESC`).
		WithArgs("new", 10).
		WillReturnRows(sqlmock.NewRows(alertCols).
			AddRow(int64(2), "fan_out_spike", "0x2", "high", 0.1, []byte(`{}`), "new", nil, nil, nil, now, "b").
			AddRow(int64(1), "fan_out_spike", "0x1", "medium", 0.9, []byte(`{}`), "new", nil, nil, nil, now, "a"))

	alerts, err := repo.ListQueue(context.Background(), 10, model.AlertStatusNew)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
}

func TestAlertRepo_ListRecent_StatusFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlertRepo(db)
	status := model.AlertStatusAck

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(5, "ack").
		WillReturnRows(sqlmock.NewRows(alertCols))

	alerts, err := repo.ListRecent(context.Background(), 5, &status)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}
