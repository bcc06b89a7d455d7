package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthConfig_Validate(t *testing.T) {
	c := HealthConfig{}
	require.NoError(t, c.Validate())
	assert.Equal(t, defaultHealthInterval, c.Interval)

	c = HealthConfig{Interval: time.Second}
	require.NoError(t, c.Validate())
	assert.Equal(t, time.Second, c.Interval)
}
