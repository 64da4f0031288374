package bench

import (
	"errors"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		value string
		want  Mode
	}{
		{"direct", ModeDirect},
		{"fbo", ModeFBO},
		{"composite", ModeFBOComposite},
	}

	for _, tc := range cases {
		mode, err := ParseMode(tc.value)
		if err != nil {
			t.Errorf("ParseMode(%q) error = %v", tc.value, err)
			continue
		}

		if mode != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.value, mode, tc.want)
		}

		if mode.String() != tc.value {
			t.Errorf("Mode.String() = %q, want %q", mode.String(), tc.value)
		}
	}
}

func TestParseModeUnknown(t *testing.T) {
	_, err := ParseMode("fbo2")

	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("ParseMode() error = %v, want *ConfigError", err)
	}

	if configErr.Field != "mode" {
		t.Errorf("ConfigError.Field = %q, want %q", configErr.Field, "mode")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative sprites", func(c *Config) { c.Sprites = -1 }, "sprites"},
		{"no textures", func(c *Config) { c.Textures = 0 }, "textures"},
		{"no targets", func(c *Config) { c.Targets = 0 }, "targets"},
		{"zero scale", func(c *Config) { c.Scale = 0 }, "scale"},
		{"negative scale", func(c *Config) { c.Scale = -1 }, "scale"},
		{"zero duration", func(c *Config) { c.Duration = 0 }, "duration"},
		{"empty viewport", func(c *Config) { c.Width = 0 }, "size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()

			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}

			if configErr.Field != tc.field {
				t.Errorf("ConfigError.Field = %q, want %q", configErr.Field, tc.field)
			}
		})
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}

	if cfg.Duration != 4*time.Second {
		t.Errorf("default Duration = %v, want 4s", cfg.Duration)
	}
}

func TestConfigZeroSpritesValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sprites = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, zero sprites is a valid empty scene", err)
	}
}
