package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-minidi/framework/config"
)

func TestLoadDefinitions_YAML(t *testing.T) {
	t.Setenv("MAILER_FROM", "noreply@example.com")

	defs, err := config.LoadDefinitions("testdata/container.yaml")
	require.NoError(t, err)

	mailer := defs["mailer"].(map[string]any)
	assert.Equal(t, "app.Mailer", mailer["class"])
	assert.Equal(t, true, mailer["shared"])
	assert.Equal(t, "noreply@example.com", mailer["config"].(map[string]any)["from"])

	deps := defs["repo"].(map[string]any)["dependencies"].([]any)
	require.Len(t, deps, 2)
	assert.Equal(t, "db", deps[0])
	assert.Equal(t, map[string]any{"notifier": "mailer"}, deps[1])

	assert.Equal(t, "postgres://localhost/app", defs["dsn"].(map[string]any)["value"])
}

func TestLoadDefinitions_JSON(t *testing.T) {
	t.Setenv("MAILER_FROM", "ops@example.com")

	defs, err := config.LoadDefinitions("testdata/container.json")
	require.NoError(t, err)

	cfg := defs["mailer"].(map[string]any)["config"].(map[string]any)
	assert.Equal(t, "ops@example.com", cfg["from"])
	assert.Equal(t, float64(3), cfg["retries"])
	assert.Equal(t, "app.UserRepository", defs["repo"])
}

func TestLoadDefinitions_Errors(t *testing.T) {
	_, err := config.LoadDefinitions("testdata/absent.yaml")
	assert.Error(t, err)

	_, err = config.ParseDefinitions(".toml", []byte("a = 1"))
	assert.EqualError(t, err, `unsupported definitions format ".toml"`)

	_, err = config.ParseDefinitions(".json", []byte("{broken"))
	assert.Error(t, err)

	_, err = config.ParseDefinitions(".yml", []byte("- just\n- a list\n"))
	assert.Error(t, err)
}
