package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
[telegram]
token = "test-token"
admin_ids = [1, 2]

[database]
host = "localhost"
port = 5432
user = "postgres"
dbname = "salon_booking"
`

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))

	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Schedule.WorkStartHour)
	assert.Equal(t, 21, cfg.Schedule.WorkEndHour)
	assert.Equal(t, 60, cfg.Schedule.SlotDurationMinutes)
	assert.Equal(t, 14, cfg.Schedule.DaysAhead)
	assert.Equal(t, 60, cfg.Telegram.UpdateTimeout)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig+`
[schedule]
work_start_hour = 8
work_end_hour = 20
slot_duration_minutes = 30
days_ahead = 7
`))

	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Schedule.WorkStartHour)
	assert.Equal(t, 20, cfg.Schedule.WorkEndHour)
	assert.Equal(t, 30, cfg.Schedule.SlotDurationMinutes)
	assert.Equal(t, 7, cfg.Schedule.DaysAhead)
}

func TestLoad_MissingToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
[telegram]
admin_ids = [1]

[database]
host = "localhost"
port = 5432
user = "postgres"
dbname = "salon_booking"
`))

	assert.Error(t, err)
}

func TestLoad_EmptyAdminList(t *testing.T) {
	_, err := Load(writeConfig(t, `
[telegram]
token = "test-token"
admin_ids = []

[database]
host = "localhost"
port = 5432
user = "postgres"
dbname = "salon_booking"
`))

	assert.Error(t, err)
}

func TestLoad_EndBeforeStartRejected(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
[schedule]
work_start_hour = 20
work_end_hour = 10
`))

	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	dsn := cfg.Database.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=salon_booking")
	assert.Contains(t, dsn, "sslmode=disable")
}
