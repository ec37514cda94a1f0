package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/tally/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TALLY_CONFIG",
	"TALLY_ADDR",
	"TALLY_LOG_LEVEL",
	"TALLY_STORE",
	"TALLY_SQLITE_PATH",
	"TALLY_HISTORY_LIMIT",
	"TALLY_PARTICIPANT_HISTORY_LIMIT",
	"TALLY_HUB_BUFFER",
	"TALLY_RATE_LIMIT_RPS",
	"TALLY_RATE_LIMIT_BURST",
	"TALLY_SEED",
}

func clearConfigEnvVars() {
	for _, key := range configEnvVars {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tally.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 50)
				convey.So(cfg.ParticipantHistoryLimit, convey.ShouldEqual, 20)
				convey.So(cfg.HubBuffer, convey.ShouldEqual, 8)
				convey.So(cfg.Seed, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TALLY_ADDR", ":8080")
			_ = os.Setenv("TALLY_STORE", "sqlite")
			_ = os.Setenv("TALLY_SQLITE_PATH", "/tmp/tally-test.db")
			_ = os.Setenv("TALLY_HISTORY_LIMIT", "25")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/tally-test.db")
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 25)
				convey.So(cfg.ParticipantHistoryLimit, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
history_limit: 100
participant_history_limit: 40
hub_buffer: 16
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("TALLY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 100)
				convey.So(cfg.ParticipantHistoryLimit, convey.ShouldEqual, 40)
				convey.So(cfg.HubBuffer, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
history_limit: 100
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("TALLY_CONFIG", tmpFile)
			_ = os.Setenv("TALLY_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")             // Overridden by env
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 100)         // From file
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory) // Default
			})
		})

		convey.Convey("When the config is invalid", func() {
			defer clearConfigEnvVars()

			convey.Convey("An unknown store backend is rejected", func() {
				clearConfigEnvVars()
				_ = os.Setenv("TALLY_STORE", "redis")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("A non-positive history limit is rejected", func() {
				clearConfigEnvVars()
				_ = os.Setenv("TALLY_HISTORY_LIMIT", "0")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
