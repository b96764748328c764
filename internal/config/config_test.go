package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/classahp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.StoreSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.CRThreshold, convey.ShouldEqual, 0.10)
			convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one broken setting", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"zero queue":        func(c *config.Config) { c.QueueSize = 0 },
			"zero workers":      func(c *config.Config) { c.WorkerCount = 0 },
			"negative dedupe":   func(c *config.Config) { c.DedupeSize = -1 },
			"zero store":        func(c *config.Config) { c.StoreSize = 0 },
			"zero threshold":    func(c *config.Config) { c.CRThreshold = 0 },
			"huge threshold":    func(c *config.Config) { c.CRThreshold = 1 },
			"zero shutdown":     func(c *config.Config) { c.ShutdownTimeout = 0 },
			"unknown logformat": func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})

	convey.Convey("Given a zero dedupe size", t, func() {
		cfg := config.New()
		cfg.DedupeSize = 0
		convey.Convey("Then it is accepted as unbounded", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
