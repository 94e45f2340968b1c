package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "/opt/ml/model", cfg.Adapter.ModelDir)
	assert.False(t, cfg.Adapter.RequireField)
	assert.Equal(t, "text", cfg.Forwarder.RequiredField)
	assert.Zero(t, cfg.Endpoint.Timeout)
	assert.Equal(t, "builtin", cfg.Fit.Trainer)
	assert.Equal(t, int64(42), cfg.Fit.Seed)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_PlatformEnv(t *testing.T) {
	t.Setenv("SM_MODEL_DIR", "/tmp/model")
	t.Setenv("SM_CHANNEL_TRAIN", "/tmp/train")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/model", cfg.Adapter.ModelDir)
	assert.Equal(t, "/tmp/model", cfg.Fit.ModelDir)
	assert.Equal(t, "/tmp/train", cfg.Fit.TrainDir)
}

func TestLoad_FlagWinsOverEnv(t *testing.T) {
	t.Setenv("SM_MODEL_DIR", "/tmp/env-model")
	t.Setenv("SM_CHANNEL_TRAIN", "/tmp/env-train")

	flags := pflag.NewFlagSet("fit", pflag.ContinueOnError)
	flags.String("model_dir", "", "")
	flags.String("train", "", "")
	flags.Int64("seed", 42, "")
	require.NoError(t, flags.Parse([]string{"--model_dir=/tmp/flag-model", "--seed=7"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/flag-model", cfg.Fit.ModelDir)
	assert.Equal(t, "/tmp/env-train", cfg.Fit.TrainDir, "unset flag must not shadow env")
	assert.Equal(t, int64(7), cfg.Fit.Seed)
}

func TestLoad_EndpointTimeout(t *testing.T) {
	t.Setenv("ENDPOINT_TIMEOUT", "30")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Endpoint.Timeout)

	t.Setenv("ENDPOINT_TIMEOUT", "1m")
	cfg, err = Load(nil)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Endpoint.Timeout)

	t.Setenv("ENDPOINT_TIMEOUT", "soon")
	_, err = Load(nil)
	assert.Error(t, err)
}

func TestLoad_BareForwarder(t *testing.T) {
	t.Setenv("FORWARDER_REQUIRED_FIELD", "")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Forwarder.RequiredField)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "svc", Password: "p@ss", Name: "runs", SSLMode: "disable"}
	assert.Equal(t, "postgres://svc:p%40ss@db:5432/runs?sslmode=disable", d.DSN())
}
