package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/quoted"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/record"
	"github.com/goccy/go-json"
	. "github.com/smartystreets/goconvey/convey"
)

func run(stdin string, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func row(ts time.Time, skill string, totalExp int64) string {
	return quoted.JoinLine(record.Encode(model.Event{Timestamp: ts, Skill: skill, TotalExp: model.Int(totalExp)}))
}

func TestCommands_Registration(t *testing.T) {
	root := newRootCmd(&session{})
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"append", "query", "buckets", "week", "gaps", "resolve", "import-untracked", "export", "stats", "version"} {
		if !names[want] {
			t.Errorf("expected %q command to be registered", want)
		}
	}
}

func TestCommands_EndToEnd(t *testing.T) {
	t.Setenv("SYRNIA_CONFIG", "")
	t.Setenv("SYRNIA_TIMEZONE", "UTC")
	t.Setenv("SYRNIA_STORE_DRIVER", "file")

	Convey("Given an empty file store", t, func() {
		dir := t.TempDir()
		So(os.Setenv("SYRNIA_STORE_PATH", dir), ShouldBeNil)
		defer os.Unsetenv("SYRNIA_STORE_PATH")

		base := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)
		input := strings.Join([]string{
			quoted.JoinLine(record.Header()),
			row(base, "Mining", 100),
			row(base.Add(5*time.Minute), "Mining", 160),
			"",
		}, "\n")

		out, err := run(input, "append")
		So(err, ShouldBeNil)
		var appended appendResult
		So(json.Unmarshal([]byte(out), &appended), ShouldBeNil)
		So(appended.Appended, ShouldEqual, 2)
		So(appended.GainedExp["Mining"], ShouldEqual, 160)

		Convey("When the day is queried", func() {
			out, err := run("", "query", "--from", "2024-03-06", "--to", "2024-03-07")

			Convey("Then the summary totals the gains", func() {
				So(err, ShouldBeNil)
				var res queryResult
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Summary.TotalExp, ShouldEqual, 160)
			})
		})

		Convey("When the day is bucketed by hour", func() {
			out, err := run("", "buckets", "--from", "2024-03-06T09:00:00Z", "--to", "2024-03-06T12:00:00Z", "--by", "hour")

			Convey("Then there is a bucket per hour", func() {
				So(err, ShouldBeNil)
				var buckets []model.Bucket
				So(json.Unmarshal([]byte(out), &buckets), ShouldBeNil)
				So(len(buckets), ShouldEqual, 3)
				So(buckets[1].Summary.TotalExp, ShouldEqual, 160)
			})
		})

		Convey("When a later row is appended as an argument", func() {
			out, err := run("", "append", row(base.Add(time.Hour), "Mining", 200))

			Convey("Then the gain continues from the stored baseline", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, `"Mining": 40`)
			})
		})

		Convey("When the log is exported", func() {
			out, err := run("", "export")

			Convey("Then the header and both rows come back", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(out), "\n")
				So(len(lines), ShouldEqual, 3)
				So(lines[0], ShouldStartWith, "timestamp,")
			})
		})

		Convey("When an untracked record is imported and resolved", func() {
			records := `[{"id":"r1","startUTC":"2024-03-06T13:10:00Z","endUTC":"2024-03-06T13:40:00Z","skill":"Fishing","expGained":90}]`
			_, err := run(records, "import-untracked")
			So(err, ShouldBeNil)

			out, err := run("", "gaps")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"r1"`)

			_, err = run("", "resolve", "--ids", "r1", "--date", "2024-03-06")
			So(err, ShouldBeNil)

			Convey("Then no gap is left and the exp is in the log", func() {
				out, err := run("", "gaps")
				So(err, ShouldBeNil)
				So(strings.TrimSpace(out), ShouldEqual, "[]")

				out, err = run("", "query", "--from", "2024-03-06T13:00:00Z", "--to", "2024-03-06T14:00:00Z")
				So(err, ShouldBeNil)
				var res queryResult
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Summary.ExpBySkill["Fishing"], ShouldEqual, 90)
			})
		})

		Convey("When metrics are requested", func() {
			path := filepath.Join(t.TempDir(), "tracker.prom")
			_, err := run("", "stats", "--metrics-file", path)

			Convey("Then the textfile holds the tracker metrics", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "syrnia_tracker_records_decoded_total")
			})
		})
	})

	Convey("Given an unknown store driver", t, func() {
		So(os.Setenv("SYRNIA_STORE_DRIVER", "redis"), ShouldBeNil)
		defer os.Setenv("SYRNIA_STORE_DRIVER", "file")

		_, err := run("", "stats")

		So(err, ShouldNotBeNil)
	})

	Convey("The version command needs no store", t, func() {
		So(os.Setenv("SYRNIA_STORE_DRIVER", "redis"), ShouldBeNil)
		defer os.Setenv("SYRNIA_STORE_DRIVER", "file")

		out, err := run("", "version")

		So(err, ShouldBeNil)
		So(out, ShouldStartWith, "syrnia-tracker dev")
	})
}
