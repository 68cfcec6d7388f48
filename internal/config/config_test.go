package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 10*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 5*time.Second, cfg.StatusTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "AstroTech Wealth", cfg.BrandName)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STATUS_TTL", "2s")
	t.Setenv("BACKEND_URL", "https://api.example.in")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.StatusTTL)
	assert.Equal(t, "https://api.example.in", cfg.BackendURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins())
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"zero status ttl", map[string]string{"STATUS_TTL": "0s"}},
		{"bad timezone", map[string]string{"BOOKING_TIMEZONE": "Mars/Olympus"}},
		{"prod without key", map[string]string{"APP_ENV": "production", "SERVICE_EMAIL": "astro@example.in"}},
		{"prod without service email", map[string]string{"APP_ENV": "release", "CHECKOUT_KEY_ID": "rzp_live"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
