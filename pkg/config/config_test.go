package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminIDs(t *testing.T) {
	ids, err := parseAdminIDs("6555503209, 42,7")
	require.NoError(t, err)
	assert.Equal(t, []int64{6555503209, 42, 7}, ids)
}

func TestParseAdminIDsEmpty(t *testing.T) {
	ids, err := parseAdminIDs("   ")
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestParseAdminIDsMalformed(t *testing.T) {
	_, err := parseAdminIDs("1,not-a-number")
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 50, cfg.Listing.PageLimit)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
}
