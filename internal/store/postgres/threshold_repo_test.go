package postgres

import (
	"context"
	"testing"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdRepo_Overrides_NullsStayUnset(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewThresholdRepo(db)

	mock.ExpectQuery("FROM alert_thresholds").
		WillReturnRows(sqlmock.NewRows([]string{"rule_type", "min_ratio", "min_delta", "min_count", "cooldown_hours", "enabled"}).
			AddRow("fan_out_spike", 4.5, nil, nil, nil, false))

	overrides, err := repo.Overrides(context.Background())
	require.NoError(t, err)
	p, ok := overrides[model.RuleFanOutSpike]
	require.True(t, ok)
	require.NotNil(t, p.MinRatio)
	assert.Equal(t, 4.5, *p.MinRatio)
	assert.Nil(t, p.MinDelta)
	assert.Nil(t, p.MinCount)
	assert.Nil(t, p.CooldownHours)
	require.NotNil(t, p.Enabled)
	assert.False(t, *p.Enabled)
}

func TestThresholdRepo_Patch_OnlyProvidedFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewThresholdRepo(db)
	ratio := 2.5

	mock.ExpectExec(`min_ratio = COALESCE\(EXCLUDED.min_ratio, alert_thresholds.min_ratio\)`).
		WithArgs("fan_in_spike", 2.5, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Patch(context.Background(), model.RuleFanInSpike, model.ThresholdPatch{MinRatio: &ratio})
	require.NoError(t, err)
}

func TestThresholdRepo_ReplaceAll_SingleTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewThresholdRepo(db)

	set := model.ThresholdSet{
		model.RuleFanOutSpike:           {MinRatio: 3, MinDelta: 20, MinCount: 25, CooldownHours: 6, Enabled: true},
		model.RuleNewHighCentralityNode: {MinCount: 300, CooldownHours: 12, Enabled: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO alert_thresholds").
		WithArgs("fan_out_spike", 3.0, int64(20), int64(25), 6, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO alert_thresholds").
		WithArgs("new_high_centrality_node", 0.0, int64(0), int64(300), 12, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), set))
}
