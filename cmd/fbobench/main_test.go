package main

import (
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli"

	"github.com/oliverbestmann/fbobench/bench"
)

func testContext(mutate func(set *flag.FlagSet)) *cli.Context {
	set := flag.NewFlagSet("fbobench", flag.ContinueOnError)

	set.Int("sprites", 10, "")
	set.Int("textures", 2, "")
	set.Int("targets", 1, "")
	set.Float64("scale", 3.0, "")
	set.Duration("duration", 10*time.Millisecond, "")
	set.String("mode", "direct", "")
	set.Bool("msaa", false, "")
	set.String("backend", "headless", "")
	set.Int("width", 320, "")
	set.Int("height", 200, "")
	set.Bool("profile", false, "")
	set.Bool("v", false, "")

	mutate(set)

	return cli.NewContext(nil, set, nil)
}

func TestRunRejectsNegativeViewport(t *testing.T) {
	c := testContext(func(set *flag.FlagSet) {
		if err := set.Set("width", "-1"); err != nil {
			t.Fatalf("set width: %v", err)
		}
	})

	err := run(c)

	var configErr *bench.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("run() error = %v, want *ConfigError", err)
	}

	if configErr.Field != "size" {
		t.Errorf("ConfigError.Field = %q, want %q", configErr.Field, "size")
	}
}

func TestRunRejectsUnknownBackend(t *testing.T) {
	c := testContext(func(set *flag.FlagSet) {
		if err := set.Set("backend", "vulkan"); err != nil {
			t.Fatalf("set backend: %v", err)
		}
	})

	err := run(c)

	var configErr *bench.ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("run() error = %v, want *ConfigError", err)
	}

	if configErr.Field != "backend" {
		t.Errorf("ConfigError.Field = %q, want %q", configErr.Field, "backend")
	}
}
