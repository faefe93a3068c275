package pyroscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.False(t, cfg.Enabled())
	assert.NoError(t, cfg.Validate())

	cfg.ServerAddress = "pyroscope:4040"
	assert.Error(t, cfg.Validate())

	cfg.ServerAddress = "http://pyroscope:4040"
	assert.NoError(t, cfg.Validate())

	cfg.ApiKey = "key"
	cfg.BasicAuthUser = "user"
	assert.Error(t, cfg.Validate())
}

func TestBuildTagsOverridesHostname(t *testing.T) {
	t.Setenv("HOSTNAME", "node-1")

	tags := buildTags(Config{Tags: map[string]string{"env": "prod"}})
	assert.Equal(t, map[string]string{"hostname": "node-1", "env": "prod"}, tags)

	tags = buildTags(Config{Tags: map[string]string{"hostname": "override"}})
	assert.Equal(t, "override", tags["hostname"])
}
