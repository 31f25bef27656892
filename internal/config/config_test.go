package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MEDIA_QUIET_PERIOD", "")
	t.Setenv("ARCHIVE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 1500*time.Millisecond, cfg.Intake.MediaQuietPeriod)
	assert.Equal(t, "B", cfg.Intake.ReportIDPrefix)
	assert.Equal(t, ArchiveChannel, cfg.Archive.Backend)
}

func TestLoad_TelegramIDs(t *testing.T) {
	t.Setenv("MANAGERS_GROUP_ID", "-1003528230429")
	t.Setenv("INITIAL_ADMIN_ID", "1748938261")
	t.Setenv("MEDIA_QUIET_PERIOD", "250ms")
	t.Setenv("AWS_ENDPOINT_URL", "http://localstack:4566")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(-1003528230429), cfg.Telegram.ManagersGroupID)
	assert.Equal(t, int64(1748938261), cfg.Telegram.InitialAdminID)
	assert.Equal(t, 250*time.Millisecond, cfg.Intake.MediaQuietPeriod)
	assert.Equal(t, "http://localstack:4566", cfg.Archive.EndpointURL)
}

func TestLoad_BadNumber(t *testing.T) {
	t.Setenv("MANAGERS_GROUP_ID", "group")

	_, err := Load()
	assert.ErrorContains(t, err, "MANAGERS_GROUP_ID")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.DB.Driver = DriverSQLite
		c.DB.SQLitePath = "x.db"
		c.Archive.Backend = ArchiveNone
		c.Intake.MediaQuietPeriod = time.Second
		return c
	}

	require.NoError(t, base().Validate())

	c := base()
	c.DB.Driver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.Archive.Backend = ArchiveS3
	assert.ErrorContains(t, c.Validate(), "ARCHIVE_S3_BUCKET")

	c = base()
	c.Archive.Backend = ArchiveChannel
	assert.ErrorContains(t, c.Validate(), "STORAGE_CHANNEL_ID")

	c = base()
	c.Intake.MediaQuietPeriod = 0
	assert.Error(t, c.Validate())
}

func TestValidateBots(t *testing.T) {
	c := &Config{}
	assert.Error(t, c.ValidateBots())

	c.Telegram.ClientToken = "a"
	c.Telegram.AdminToken = "b"
	assert.ErrorContains(t, c.ValidateBots(), "MANAGERS_GROUP_ID")

	c.Telegram.ManagersGroupID = -100
	assert.NoError(t, c.ValidateBots())
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseList(" a:9092, ,b:9092 "))
	assert.Nil(t, ParseList(""))
}
