package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/adapters/engine"
	. "github.com/smartystreets/goconvey/convey"
)

func writeVocab(t *testing.T, pieces ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	content := ""
	for _, p := range pieces {
		content += p + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTokenizer(t *testing.T) {
	Convey("Given a small subword vocabulary", t, func() {
		path := writeVocab(t,
			"<s>", "<pad>", "</s>", "<unk>",
			"▁hello", "▁world", "▁he", "llo", "wor", "ld", "▁w",
		)
		tok, err := engine.NewTokenizer(path)
		So(err, ShouldBeNil)

		Convey("Then special token ids follow the file order", func() {
			So(tok.BOS(), ShouldEqual, 0)
			So(tok.EOS(), ShouldEqual, 2)
		})

		Convey("When encoding text covered by whole pieces", func() {
			tokens := tok.Encode("hello world")

			Convey("Then the longest boundary-marked pieces win", func() {
				So(tokens, ShouldHaveLength, 2)
				So(tokens[0].ID, ShouldEqual, 4) // ▁hello
				So(tokens[1].ID, ShouldEqual, 5) // ▁world
			})

			Convey("And offsets address the original runes", func() {
				So(tokens[0].Start, ShouldEqual, 0)
				So(tokens[0].End, ShouldEqual, 5)
				So(tokens[1].Start, ShouldEqual, 6)
				So(tokens[1].End, ShouldEqual, 11)
			})
		})

		Convey("When a word needs multiple pieces", func() {
			tokens := tok.Encode("worhello")

			Convey("Then continuation pieces carry contiguous offsets", func() {
				So(len(tokens), ShouldBeGreaterThan, 1)
				for i := 1; i < len(tokens); i++ {
					So(tokens[i].Start, ShouldEqual, tokens[i-1].End)
				}
			})
		})

		Convey("When the text contains unknown characters", func() {
			tokens := tok.Encode("héllo")

			Convey("Then unknown runes become single unk tokens instead of failing", func() {
				So(tokens, ShouldNotBeEmpty)
				sawUnk := false
				for _, tk := range tokens {
					if tk.ID == 3 {
						sawUnk = true
					}
				}
				So(sawUnk, ShouldBeTrue)
			})
		})

		Convey("When encoding the empty string", func() {
			So(tok.Encode(""), ShouldBeEmpty)
		})
	})

	Convey("Given a vocabulary missing the special tokens", t, func() {
		path := writeVocab(t, "▁hello", "▁world")

		Convey("Then construction fails with the invalid-vocab kind", func() {
			_, err := engine.NewTokenizer(path)
			So(err, ShouldWrap, engine.ErrInvalidVocab)
		})
	})

	Convey("Given a missing vocabulary file", t, func() {
		_, err := engine.NewTokenizer(filepath.Join(t.TempDir(), "nope.txt"))
		So(err, ShouldNotBeNil)
	})
}
