package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "supermarket_app_db", cfg.DBName)
	assert.Equal(t, 5*time.Second, cfg.ShareGrace)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, int64(1), cfg.UserID)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	content := "db_name: from_file\nshare_grace: 250ms\nuser_id: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yaml"), []byte(content), 0o644))

	t.Setenv("STOREFRONT_USER_ID", "7")

	cfg, err := Load(New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "from_file", cfg.DBName)
	assert.Equal(t, 250*time.Millisecond, cfg.ShareGrace)
	assert.Equal(t, int64(7), cfg.UserID)
}

func TestLoad_OverrideWins(t *testing.T) {
	t.Setenv("STOREFRONT_DATA_DIR", "/from/env")

	v := New()
	v.Set(KeyDataDir, "/from/flag")

	cfg, err := Load(v, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "storefront.yaml"), []byte("db_name: [unclosed\n"), 0o644))

	_, err := Load(New(), dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DBName: "db", BcryptCost: bcrypt.MinCost, UserID: 1}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db name", func(c *Config) { c.DBName = "" }},
		{"negative grace", func(c *Config) { c.ShareGrace = -time.Second }},
		{"cost too low", func(c *Config) { c.BcryptCost = 1 }},
		{"cost too high", func(c *Config) { c.BcryptCost = bcrypt.MaxCost + 1 }},
		{"zero user", func(c *Config) { c.UserID = 0 }},
	}

	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
