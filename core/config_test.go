package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", "sqlite")
	t.Setenv("TEST_DATABASE_NAME", ":memory:")
	t.Setenv("TEST_DATABASE_PORT", "6543")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.True(t, conf.Debug)
	assert.Equal(t, "e-Dossier", conf.AppName)
	assert.Equal(t, "sqlite", conf.Database.Engine)
	assert.Equal(t, ":memory:", conf.Database.Name)
	assert.Equal(t, "localhost:6543", conf.Database.Address())
	assert.NotEmpty(t, conf.WorkDir)
}
