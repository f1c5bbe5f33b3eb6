//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults on a minimal file", func(t *testing.T) {
		path := writeConfig(t, "bot:\n  token: abc\n")

		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cfg.Schedule.Hour != 20 || *cfg.Schedule.Minute != 0 || cfg.Schedule.Timezone != "Europe/Rome" {
			t.Errorf("unexpected schedule %d:%d %s", *cfg.Schedule.Hour, *cfg.Schedule.Minute, cfg.Schedule.Timezone)
		}
		if cfg.Store.Backend != "file" || cfg.Store.Key != "subscribed_users.txt" {
			t.Errorf("unexpected store %+v", cfg.Store)
		}
		if cfg.Projection.Threshold != 0.9 || cfg.Projection.DosesPerPerson != 2 {
			t.Errorf("unexpected projection %+v", cfg.Projection)
		}
		if cfg.Feed.CacheTTL != 10*time.Minute || !strings.HasPrefix(cfg.Feed.CSVURL, "https://") {
			t.Errorf("unexpected feed %+v", cfg.Feed)
		}
	})

	t.Run("should accept a midnight trigger", func(t *testing.T) {
		// Arrange
		path := writeConfig(t, "bot:\n  token: abc\nschedule:\n  hour: 0\n  minute: 0\n")

		// Act
		cfg, err := LoadConfig(path, false)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cfg.Schedule.Hour != 0 || *cfg.Schedule.Minute != 0 {
			t.Errorf("expected 00:00, got %02d:%02d", *cfg.Schedule.Hour, *cfg.Schedule.Minute)
		}
	})

	t.Run("should default the hour but keep an explicit minute", func(t *testing.T) {
		path := writeConfig(t, "bot:\n  token: abc\nschedule:\n  minute: 30\n")

		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if *cfg.Schedule.Hour != 20 || *cfg.Schedule.Minute != 30 {
			t.Errorf("expected 20:30, got %02d:%02d", *cfg.Schedule.Hour, *cfg.Schedule.Minute)
		}
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		path := writeConfig(t, "bot:\n  token: from-file\nstore:\n  backend: file\n")
		t.Setenv("TELEGRAM_TOKEN", "from-env")
		t.Setenv("STORE_BACKEND", "redis")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")

		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Bot.Token != "from-env" {
			t.Errorf("expected env token, got %q", cfg.Bot.Token)
		}
		if cfg.Store.Backend != "redis" || cfg.Redis.URL == "" {
			t.Errorf("unexpected store %+v redis %+v", cfg.Store, cfg.Redis)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected dev runtime")
		}
	})

	t.Run("should run from the environment when the file is missing", func(t *testing.T) {
		t.Setenv("TELEGRAM_TOKEN", "env-only")
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Bot.Token != "env-only" {
			t.Errorf("got %q", cfg.Bot.Token)
		}
	})

	t.Run("should allow a missing token in dev mode", func(t *testing.T) {
		t.Setenv("TELEGRAM_TOKEN", "")
		if _, err := LoadConfig(writeConfig(t, "log:\n  level: debug\n"), true); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("should reject invalid settings", func(t *testing.T) {
		cases := map[string]string{
			"missing token":    "log:\n  level: info\n",
			"bad timezone":     "bot:\n  token: x\nschedule:\n  timezone: Mars/Olympus\n",
			"bad hour":         "bot:\n  token: x\nschedule:\n  hour: 25\n",
			"postgres w/o url": "bot:\n  token: x\nstore:\n  backend: postgres\n",
			"unknown backend":  "bot:\n  token: x\nstore:\n  backend: s3\n",
			"threshold > 1":    "bot:\n  token: x\nprojection:\n  threshold: 1.5\n",
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				t.Setenv("TELEGRAM_TOKEN", "")
				if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})
}
