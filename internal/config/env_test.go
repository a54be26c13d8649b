package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DATAJPA_SET", "value")
	t.Setenv("DATAJPA_EMPTY", "")

	assert.Equal(t, "value", GetEnv("DATAJPA_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DATAJPA_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("DATAJPA_UNSET", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"42", 42},
		{"-1", -1},
		{"0", 0},
		{"", 7},
		{"ten", 7},
		{"1.5", 7},
	}
	for _, tt := range tests {
		t.Setenv("DATAJPA_INT", tt.value)
		assert.Equal(t, tt.want, GetEnvInt("DATAJPA_INT", 7), "value %q", tt.value)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"250ms", 250 * time.Millisecond},
		{"1m30s", 90 * time.Second},
		{"", time.Second},
		{"30", time.Second},
		{"soon", time.Second},
	}
	for _, tt := range tests {
		t.Setenv("DATAJPA_DURATION", tt.value)
		assert.Equal(t, tt.want, GetEnvDuration("DATAJPA_DURATION", time.Second), "value %q", tt.value)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{"", true, true},
		{"yes", false, false},
	}
	for _, tt := range tests {
		t.Setenv("DATAJPA_BOOL", tt.value)
		assert.Equal(t, tt.want, GetEnvBool("DATAJPA_BOOL", tt.fallback), "value %q", tt.value)
	}
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{"1.5", 1.5},
		{"3", 3},
		{"", 2},
		{"fast", 2},
	}
	for _, tt := range tests {
		t.Setenv("DATAJPA_FLOAT", tt.value)
		assert.Equal(t, tt.want, GetEnvFloat("DATAJPA_FLOAT", 2), "value %q", tt.value)
	}
}
