package engine_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/engine"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/eval"
	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// stubEngine is a minimal Engine for loader tests.
type stubEngine struct {
	name string
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Predict(_ context.Context, pairs []model.TranslationPair, _ int, _ bool) (*eval.Output, error) {
	return &eval.Output{Scores: make([]float64, len(pairs))}, nil
}

func (s *stubEngine) Close() error { return nil }

func TestLoader(t *testing.T) {
	Convey("Given a loader over a counting factory", t, func() {
		var constructions atomic.Int64
		factory := func(ctx context.Context) (engine.Engine, error) {
			constructions.Add(1)
			return &stubEngine{name: "Unbabel/XCOMET-XL"}, nil
		}

		var loads atomic.Int64
		loader := engine.NewLoader("Unbabel/XCOMET-XL", factory,
			engine.WithOnLoad(func(int64) { loads.Add(1) }),
		)

		Convey("Then nothing is loaded before first use", func() {
			So(loader.Loaded(), ShouldBeFalse)
			So(loader.ModelName(), ShouldEqual, "Unbabel/XCOMET-XL")
		})

		Convey("When Get is called many times concurrently", func() {
			const callers = 20
			handles := make([]*engine.Handle, callers)
			var wg sync.WaitGroup
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					h, err := loader.Get(context.Background())
					if err == nil {
						handles[n] = h
					}
				}(i)
			}
			wg.Wait()

			Convey("Then construction happened exactly once", func() {
				So(constructions.Load(), ShouldEqual, 1)
				So(loads.Load(), ShouldEqual, 1)
			})

			Convey("And every caller got the same handle", func() {
				So(handles[0], ShouldNotBeNil)
				for _, h := range handles[1:] {
					So(h, ShouldEqual, handles[0])
				}
			})

			Convey("And the handle carries the model identity", func() {
				So(handles[0].Name, ShouldEqual, "Unbabel/XCOMET-XL")
				So(handles[0].RequiresReference, ShouldBeFalse)
			})
		})

		Convey("When Get is called again sequentially", func() {
			_, err := loader.Get(context.Background())
			So(err, ShouldBeNil)
			_, err = loader.Get(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the cached handle is reused", func() {
				So(constructions.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a factory that fails once then succeeds", t, func() {
		attempts := 0
		factory := func(ctx context.Context) (engine.Engine, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("checkpoint download failed")
			}
			return &stubEngine{name: "wmt22-comet-da"}, nil
		}
		loader := engine.NewLoader("wmt22-comet-da", factory)

		Convey("When the first Get fails", func() {
			_, err := loader.Get(context.Background())

			Convey("Then the error carries the unavailable kind", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, engine.ErrModelUnavailable), ShouldBeTrue)
			})

			Convey("And the failure is not cached", func() {
				So(loader.Loaded(), ShouldBeFalse)

				h, err := loader.Get(context.Background())
				So(err, ShouldBeNil)
				So(h, ShouldNotBeNil)
				So(h.RequiresReference, ShouldBeTrue)
				So(attempts, ShouldEqual, 2)
			})
		})
	})
}
