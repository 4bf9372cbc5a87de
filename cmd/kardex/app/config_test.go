package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.NotEmpty(t, config.DataDir)
	assert.Equal(t, "info", config.LogLevel)
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{DataDir: "/original"}

	config.UpdateFromFlags(true, false, true, "/override")
	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "/override", config.DataDir)

	// An empty data dir flag keeps the configured value.
	config.UpdateFromFlags(false, true, false, "")
	assert.Equal(t, "/override", config.DataDir)
	assert.True(t, config.Quiet)
}

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   zerolog.Level
	}{
		{"default", Config{}, zerolog.InfoLevel},
		{"verbose", Config{Verbose: true}, zerolog.DebugLevel},
		{"quiet", Config{Quiet: true}, zerolog.WarnLevel},
		{"both prefers quiet", Config{Verbose: true, Quiet: true}, zerolog.WarnLevel},
		{"env level", Config{LogLevel: "error"}, zerolog.ErrorLevel},
		{"invalid env level", Config{LogLevel: "shouting"}, zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}
