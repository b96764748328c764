package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)

		Convey("When an unknown format is requested", func() {
			err := InitWithOptions(Options{Format: "xml"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoggerText(t *testing.T) {
	Convey("Given a text logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Writer: &buf}), ShouldBeNil)
		ctx := context.Background()

		Get().Info(ctx, "evaluation done", String("id", "e-1"), Float64("cr", 0.03), Bool("acceptable", true))

		Convey("Then fields and the caller are written", func() {
			out := buf.String()
			So(out, ShouldContainSubstring, "evaluation done")
			So(out, ShouldContainSubstring, "id=e-1")
			So(out, ShouldContainSubstring, "acceptable=true")
			So(out, ShouldContainSubstring, "logger_test.go")
		})

		Convey("When the level is raised", func() {
			buf.Reset()
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Warn(ctx, "shown")
			So(buf.String(), ShouldNotContainSubstring, "hidden")
			So(buf.String(), ShouldContainSubstring, "shown")
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(Options{Writer: &buf, Format: FormatJSON}), ShouldBeNil)

		Named("worker").Error(context.Background(), "failed",
			Error(errors.New("boom")), Int("n", 3), Duration("took", time.Second))

		Convey("Then one JSON object is written with the component", func() {
			var rec map[string]any
			So(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &rec), ShouldBeNil)
			So(rec["msg"], ShouldEqual, "failed")
			So(rec["component"], ShouldEqual, "worker")
			So(rec["n"], ShouldEqual, 3.0)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level names", t, func() {
		So(Init(), ShouldBeNil)
		for _, l := range []string{"debug", "INFO", "", "warning", "warn", "error"} {
			So(SetLevelString(l), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestFatalExits(t *testing.T) {
	Convey("Given a logger with a captured exit", t, func() {
		var buf bytes.Buffer
		code := -1
		l := &slogLogger{logger: nil, exit: func(c int) { code = c }}
		So(InitWithOptions(Options{Writer: &buf}), ShouldBeNil)
		l.logger = Get().(*slogLogger).logger

		l.Fatal(context.Background(), "fatal")
		So(code, ShouldEqual, 1)
		So(buf.String(), ShouldContainSubstring, "fatal")
	})
}
