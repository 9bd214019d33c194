package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStatementTimeout(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    int
		wantErr bool
	}{
		{"zero uses default", 0, defaultStatementTimeoutMS, false},
		{"explicit", 45_000, 45_000, false},
		{"upper bound", maxStatementTimeoutMS, maxStatementTimeoutMS, false},
		{"negative", -1, 0, true},
		{"too large", maxStatementTimeoutMS + 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config{StatementTimeoutMS: tt.in}.statementTimeoutMS()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithStatementTimeout(t *testing.T) {
	assert.Equal(t,
		"postgres://u@h/db?options=-c%20statement_timeout=5000",
		withStatementTimeout("postgres://u@h/db", 5000))
	assert.Equal(t,
		"postgres://u@h/db?sslmode=disable&options=-c%20statement_timeout=5000",
		withStatementTimeout("postgres://u@h/db?sslmode=disable", 5000))
}

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations(), "*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_ingest.up.sql", "002_alerts.up.sql", "003_ingest_created_index.up.sql"}, files)
}
