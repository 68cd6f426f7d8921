package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "file")
			convey.So(cfg.Timezone, convey.ShouldEqual, "America/New_York")
			convey.So(cfg.CostPerDamagePoint, convey.ShouldEqual, 2.5)
			convey.So(cfg.EventsKey, convey.ShouldEqual, "events_log")
			convey.So(cfg.BreakerTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.StorePath, convey.ShouldEqual, "./data")
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SYRNIA_STORE_DRIVER", "badger")
			_ = os.Setenv("SYRNIA_DEDUPE_SIZE", "10")
			_ = os.Setenv("SYRNIA_TIMEZONE", "UTC")

			cfg, err := config.Load(ctx, "")

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.StoreDriver, convey.ShouldEqual, "badger")
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10)
			convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "tracker.yaml")
			body := "store_driver: sqlite\nstore_path: /tmp/tracker\nitem_prices:\n  Gold: 1\n  Bones: 3.5\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)

			convey.Convey("env still wins over the file", func() {
				_ = os.Setenv(config.EnvConfigPath, path)
				_ = os.Setenv("SYRNIA_STORE_DRIVER", "memory")

				cfg, err := config.Load(ctx, "")

				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "memory")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/tracker")
				convey.So(cfg.ItemPrices["Bones"], convey.ShouldEqual, 3.5)
			})

			convey.Convey("an explicit path is read", func() {
				cfg, err := config.Load(ctx, path)

				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("SYRNIA_STORE_DRIVER", "postgres")

			_, err := config.Load(ctx, "")

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the file driver has no path", func() {
			cfg := config.New(ctx)
			cfg.StorePath = ""

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		config.EnvConfigPath,
		"SYRNIA_STORE_DRIVER",
		"SYRNIA_STORE_PATH",
		"SYRNIA_DEDUPE_SIZE",
		"SYRNIA_TIMEZONE",
	} {
		_ = os.Unsetenv(key)
	}
}
