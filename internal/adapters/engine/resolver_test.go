package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolveModel(t *testing.T) {
	Convey("Given a cache dir that already holds the artifacts", t, func() {
		dir := t.TempDir()
		target := filepath.Join(dir, "Unbabel--XCOMET-XL")
		So(os.MkdirAll(target, 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(target, "model.onnx"), []byte("onnx"), 0o644), ShouldBeNil)
		So(os.WriteFile(filepath.Join(target, "vocab.txt"), []byte("<s>\n"), 0o644), ShouldBeNil)

		Convey("When resolving the model", func() {
			paths, err := engine.ResolveModel(context.Background(), "Unbabel/XCOMET-XL", dir)

			Convey("Then the cached files are reused without any fetch", func() {
				So(err, ShouldBeNil)
				So(paths.Checkpoint, ShouldEqual, filepath.Join(target, "model.onnx"))
				So(paths.Vocab, ShouldEqual, filepath.Join(target, "vocab.txt"))
			})
		})
	})

	Convey("Given a missing artifact and a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When resolving", func() {
			_, err := engine.ResolveModel(ctx, "Unbabel/XCOMET-XL", t.TempDir())

			Convey("Then the download attempt surfaces the context error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
