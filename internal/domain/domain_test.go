package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTools(t *testing.T) {
	a := AgentConfig{Tools: []string{"get_weather", "get_time", "get_weather"}}
	assert.Equal(t, []string{"get_time", "get_weather"}, a.NormalizeTools())
}

func TestNormalizeToolsEmpty(t *testing.T) {
	a := AgentConfig{}
	assert.Empty(t, a.NormalizeTools())
}
