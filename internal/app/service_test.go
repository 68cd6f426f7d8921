package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/adapters/blobstore"
	service "github.com/ParkerM2/Syrnia-Tracker-sub000/internal/app"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/model"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/record"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/logger"
	"github.com/ParkerM2/Syrnia-Tracker-sub000/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var utc = week.NewCalendarIn(time.UTC)

func at(h, m int) time.Time { return time.Date(2024, 3, 6, h, m, 0, 0, time.UTC) }

func candidate(ts time.Time, id, skill string, totalExp int64) []string {
	return record.Encode(model.Event{
		Timestamp: ts,
		EventID:   id,
		Skill:     skill,
		TotalExp:  model.Int(totalExp),
	})
}

func started(store blobstore.BlobStore, opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithStore(store),
		service.WithCalendar(utc),
		service.WithLogger(logger.Nop()),
	}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

// counterValue sums every series of the named counter in the tracker registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// flakyStore fails writes to one key while failing is set. It cannot batch,
// so the service writes blob by blob.
type flakyStore struct {
	mu      sync.Mutex
	inner   *blobstore.Memory
	failKey string
	failing bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return f.inner.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, val []byte) error {
	f.mu.Lock()
	failing := f.failing && key == f.failKey
	f.mu.Unlock()
	if failing {
		return errors.New("write refused")
	}
	return f.inner.Set(ctx, key, val)
}

func (f *flakyStore) Close() error { return f.inner.Close() }

func (f *flakyStore) fail(on bool) {
	f.mu.Lock()
	f.failing = on
	f.mu.Unlock()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that has not been started", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then operations report it", func() {
			_, err := svc.AppendCandidate(ctx, candidate(at(10, 0), "e1", "Mining", 10))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			summary, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(summary.ExpBySkill, ShouldNotBeNil)
		})

		Convey("When it is started and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Stats().Started, ShouldBeTrue)

			svc.Stop()
			So(svc.Stats().Started, ShouldBeFalse)
		})
	})
}

func TestService_AppendCandidate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service on a file store", t, func() {
		dir := t.TempDir()
		store, err := blobstore.NewFile(dir)
		So(err, ShouldBeNil)
		svc := started(store)

		Convey("When cumulative exp 0, 50, 50, 120 is appended", func() {
			var gains []int64
			for i, total := range []int64{0, 50, 50, 120} {
				e, err := svc.AppendCandidate(ctx, candidate(at(10, i), "", "Mining", total))
				So(err, ShouldBeNil)
				gains = append(gains, e.GainedExp)
			}

			Convey("Then each row gains the delta", func() {
				So(gains, ShouldResemble, []int64{0, 50, 0, 70})
			})

			Convey("Then the window totals the gains", func() {
				summary, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))
				So(err, ShouldBeNil)
				So(summary.TotalExp, ShouldEqual, 120)
				So(summary.ExpBySkill["Mining"], ShouldEqual, 120)
				So(summary.EventCount, ShouldEqual, 4)
			})

			Convey("Then a restarted service continues from the stored baseline", func() {
				again, err := blobstore.NewFile(dir)
				So(err, ShouldBeNil)
				next := started(again)
				e, err := next.AppendCandidate(ctx, candidate(at(11, 0), "", "Mining", 150))
				So(err, ShouldBeNil)
				So(e.GainedExp, ShouldEqual, 30)
			})

			Convey("Then the export starts with the header", func() {
				var buf bytes.Buffer
				So(svc.Export(ctx, &buf), ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(len(lines), ShouldEqual, 5)
				So(strings.HasPrefix(lines[0], "timestamp,eventId,skill,"), ShouldBeTrue)
			})
		})

		Convey("When the same observation arrives twice", func() {
			_, err := svc.AppendCandidate(ctx, candidate(at(10, 0), "e1", "Mining", 100))
			So(err, ShouldBeNil)
			_, err = svc.AppendCandidate(ctx, candidate(at(10, 0), "e1", "Mining", 100))
			So(err, ShouldBeNil)

			Convey("Then it is counted once", func() {
				st := svc.Stats()
				So(st.Appended, ShouldEqual, 2)
				So(st.Duplicates, ShouldEqual, 1)

				summary, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))
				So(err, ShouldBeNil)
				So(summary.EventCount, ShouldEqual, 1)
				So(summary.TotalExp, ShouldEqual, 100)
			})
		})

		Convey("When a row has too few fields", func() {
			_, err := svc.AppendCandidate(ctx, []string{"2024-03-06T10:00:00Z"})

			So(errors.Is(err, service.ErrMalformedRecord), ShouldBeTrue)
			So(svc.Stats().RejectedRows, ShouldEqual, 1)
		})

		Convey("When a row has no timestamp", func() {
			clock := func() time.Time { return at(12, 0) }
			svc := started(blobstore.NewMemory(), service.WithClock(clock))
			e, err := svc.AppendCandidate(ctx, candidate(time.Time{}, "e9", "Fishing", 5))

			So(err, ShouldBeNil)
			So(e.Timestamp, ShouldEqual, at(12, 0))
		})
	})

	Convey("Given a store that refuses to write the baselines", t, func() {
		store := &flakyStore{inner: blobstore.NewMemory(), failKey: service.DefaultKeys.Baselines}
		svc := started(store)
		_, err := svc.AppendCandidate(ctx, candidate(at(9, 0), "", "Mining", 100))
		So(err, ShouldBeNil)

		var before bytes.Buffer
		So(svc.Export(ctx, &before), ShouldBeNil)

		Convey("When an append fails", func() {
			store.fail(true)
			_, err := svc.AppendCandidate(ctx, candidate(at(10, 0), "", "Mining", 130))

			Convey("Then the store is unavailable and nothing changed", func() {
				So(errors.Is(err, service.ErrStoreUnavailable), ShouldBeTrue)

				var after bytes.Buffer
				So(svc.Export(ctx, &after), ShouldBeNil)
				So(after.String(), ShouldEqual, before.String())
			})

			Convey("Then the retry derives the same gain", func() {
				store.fail(false)
				e, err := svc.AppendCandidate(ctx, candidate(at(10, 0), "", "Mining", 130))
				So(err, ShouldBeNil)
				So(e.GainedExp, ShouldEqual, 30)
				So(svc.Stats().Duplicates, ShouldEqual, 0)
			})
		})
	})
}

func TestService_StoredLog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a log with a legacy row and a broken row", t, func() {
		store := blobstore.NewMemory()
		log := "garbage\n" +
			"2024-03-06 10:00:00,Mining,10,100,25,5 Iron ore\n"
		So(store.Set(ctx, service.DefaultKeys.Events, []byte(log)), ShouldBeNil)
		svc := started(store)

		Convey("When the window is queried", func() {
			summary, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))

			Convey("Then the legacy row counts and the broken one is skipped", func() {
				So(err, ShouldBeNil)
				So(summary.TotalExp, ShouldEqual, 25)
				st := svc.Stats()
				So(st.Malformed, ShouldEqual, 1)
				So(st.DecodedByShape["v6"], ShouldEqual, 1)
			})
		})

		Convey("When the window is queried repeatedly", func() {
			malformed := counterValue("syrnia_tracker_records_malformed_total")
			decoded := counterValue("syrnia_tracker_records_decoded_total")
			for range 3 {
				_, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))
				So(err, ShouldBeNil)
			}

			Convey("Then the decode counters do not grow", func() {
				So(counterValue("syrnia_tracker_records_malformed_total"), ShouldEqual, malformed)
				So(counterValue("syrnia_tracker_records_decoded_total"), ShouldEqual, decoded)
				So(svc.Stats().Malformed, ShouldEqual, 1)
			})
		})

		Convey("When an event is appended", func() {
			So(svc.AppendEvents(ctx, []model.Event{{Timestamp: at(11, 0), Skill: "Mining", GainedExp: 5}}), ShouldBeNil)

			Convey("Then it is added after the existing rows", func() {
				var buf bytes.Buffer
				So(svc.Export(ctx, &buf), ShouldBeNil)
				So(strings.HasPrefix(buf.String(), log), ShouldBeTrue)

				summary, err := svc.QueryWindow(ctx, at(0, 0), at(23, 0))
				So(err, ShouldBeNil)
				So(summary.TotalExp, ShouldEqual, 30)
			})
		})
	})
}

func TestService_Buckets(t *testing.T) {
	ctx := context.Background()

	Convey("Given events in two hours", t, func() {
		svc := started(blobstore.NewMemory())
		So(svc.AppendEvents(ctx, []model.Event{
			{Timestamp: at(10, 5), Skill: "Mining", GainedExp: 10},
			{Timestamp: at(11, 55), Skill: "Mining", GainedExp: 20},
		}), ShouldBeNil)

		Convey("When they are bucketed by hour", func() {
			buckets, err := svc.QueryBuckets(ctx, at(10, 0), at(12, 0), week.Hour)

			So(err, ShouldBeNil)
			So(len(buckets), ShouldEqual, 2)
			So(buckets[0].Summary.TotalExp, ShouldEqual, 10)
			So(buckets[1].Summary.TotalExp, ShouldEqual, 20)
		})
	})
}
