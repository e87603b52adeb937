package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "https://www.amazon.com", cfg.StoreBaseURL)
	assert.Equal(t, "/gp/offer-listing/%s", cfg.ListingPath)
	assert.Equal(t, []string{"ATVPDKIKX0DER"}, cfg.FirstPartySellers)
	assert.Equal(t, 3*time.Second, cfg.MonitorInterval)
	assert.Equal(t, []int{503}, cfg.FailStatuses)
	assert.Equal(t, 5, cfg.FailThreshold)
	assert.Equal(t, 300*time.Second, cfg.ProxySwitchInterval)
	assert.Equal(t, 50, cfg.CheckoutCaptchaRetries)
	assert.True(t, cfg.StopAfterFirstPurchase)
	assert.Equal(t, "console", cfg.StorageMode)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL", "750ms")
	t.Setenv("MONITOR_FAIL_STATUSES", "429, 503")
	t.Setenv("STORE_FIRST_PARTY_SELLERS", "SELLER1,SELLER2")
	t.Setenv("STOP_AFTER_FIRST_PURCHASE", "false")
	t.Setenv("MONITOR_FAIL_THRESHOLD", "7")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.MonitorInterval)
	assert.Equal(t, []int{429, 503}, cfg.FailStatuses)
	assert.Equal(t, []string{"SELLER1", "SELLER2"}, cfg.FirstPartySellers)
	assert.False(t, cfg.StopAfterFirstPurchase)
	assert.Equal(t, 7, cfg.FailThreshold)
}

func TestLoadFromEnvBadValuesFallBack(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL", "soon")
	t.Setenv("MONITOR_FAIL_THRESHOLD", "many")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.MonitorInterval)
	assert.Equal(t, 5, cfg.FailThreshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.HTTPPort = "" },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.StoreBaseURL = "" },
			wantErr: "STORE_BASE_URL",
		},
		{
			name:    "listing path without placeholder",
			mutate:  func(c *Config) { c.ListingPath = "/gp/offer-listing" },
			wantErr: "STORE_LISTING_PATH",
		},
		{
			name:    "non-positive interval",
			mutate:  func(c *Config) { c.MonitorInterval = 0 },
			wantErr: "MONITOR_INTERVAL",
		},
		{
			name:    "non-positive threshold",
			mutate:  func(c *Config) { c.FailThreshold = -1 },
			wantErr: "MONITOR_FAIL_THRESHOLD",
		},
		{
			name:    "unknown storage mode",
			mutate:  func(c *Config) { c.StorageMode = "redis" },
			wantErr: "STORAGE_MODE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
