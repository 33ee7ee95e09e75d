package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littleLane/koa/config"
)

type serverConfig struct {
	Addr  string `env:"TEST_SERVER_ADDR" envDefault:":8080"`
	Debug bool   `env:"TEST_SERVER_DEBUG" envDefault:"false"`
}

type requiredConfig struct {
	Key string `env:"TEST_REQUIRED_MISSING_KEY,required"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg serverConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvironment(t *testing.T) {
	type envConfig struct {
		Name string `env:"TEST_APP_NAME" envDefault:"fallback"`
	}

	t.Setenv("TEST_APP_NAME", "from-env")

	var cfg envConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoad_CachesPerType(t *testing.T) {
	type cachedConfig struct {
		Value string `env:"TEST_CACHED_VALUE" envDefault:"first"`
	}

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	// Later environment changes do not affect an already-loaded type.
	t.Setenv("TEST_CACHED_VALUE", "second")

	var again cachedConfig
	require.NoError(t, config.Load(&again))
	assert.Equal(t, first.Value, again.Value)
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.Error(t, err)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoad_NilTarget(t *testing.T) {
	var cfg *serverConfig
	assert.Error(t, config.Load(cfg))
}
