package config

import "testing"

func TestNew_Defaults(t *testing.T) {
	for _, key := range []string{"VALIDFLUX_LOG_LEVEL", "VALIDFLUX_LOG_FORMAT", "VALIDFLUX_FORMAT", "VALIDFLUX_DEBUG", "NO_COLOR"} {
		t.Setenv(key, "")
	}

	cfg := New()
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if cfg.OutputFormat != "table" {
		t.Errorf("OutputFormat = %q, want table", cfg.OutputFormat)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.NoColor {
		t.Error("NoColor should default to false")
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("VALIDFLUX_LOG_LEVEL", "debug")
	t.Setenv("VALIDFLUX_LOG_FORMAT", "json")
	t.Setenv("VALIDFLUX_FORMAT", "json")
	t.Setenv("VALIDFLUX_DEBUG", "true")
	t.Setenv("NO_COLOR", "1")

	cfg := New()
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" || cfg.OutputFormat != "json" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if !cfg.NoColor {
		t.Error("NoColor should honor NO_COLOR")
	}
}

func TestGetEnvBool_Invalid(t *testing.T) {
	t.Setenv("VALIDFLUX_DEBUG", "not-a-bool")
	if getEnvBool("VALIDFLUX_DEBUG", false) {
		t.Error("invalid bool should fall back to the default")
	}
}
