package engine

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SentencePiece word-boundary marker used by XLM-R style vocabularies.
const wordBoundary = "▁"

// Special token pieces expected in the vocabulary file.
const (
	pieceBOS = "<s>"
	pieceEOS = "</s>"
	pieceUNK = "<unk>"
)

// Token is one subword with its rune offsets in the original text.
type Token struct {
	ID    int32
	Start int
	End   int
}

// Tokenizer performs greedy longest-match subword segmentation over a
// plain-text vocabulary (one piece per line, line number = id). It
// tracks rune offsets so token-level model output can be mapped back to
// character positions in the translation.
type Tokenizer struct {
	ids         map[string]int32
	maxPieceLen int

	bosID int32
	eosID int32
	unkID int32
}

// NewTokenizer loads a vocabulary file.
func NewTokenizer(path string) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary: %w", err)
	}
	defer func() { _ = f.Close() }()

	t := &Tokenizer{ids: make(map[string]int32)}
	scanner := bufio.NewScanner(f)
	var id int32
	for scanner.Scan() {
		piece := scanner.Text()
		if piece == "" {
			continue
		}
		if _, dup := t.ids[piece]; dup {
			continue
		}
		t.ids[piece] = id
		if n := len([]rune(piece)); n > t.maxPieceLen {
			t.maxPieceLen = n
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}

	for piece, dst := range map[string]*int32{
		pieceBOS: &t.bosID,
		pieceEOS: &t.eosID,
		pieceUNK: &t.unkID,
	} {
		v, ok := t.ids[piece]
		if !ok {
			return nil, fmt.Errorf("vocabulary is missing %s: %w", piece, ErrInvalidVocab)
		}
		*dst = v
	}
	return t, nil
}

// BOS returns the begin-of-sequence token id.
func (t *Tokenizer) BOS() int32 { return t.bosID }

// EOS returns the end-of-sequence token id.
func (t *Tokenizer) EOS() int32 { return t.eosID }

// Encode segments text into subword tokens with rune offsets. Unknown
// characters become single-rune <unk> tokens rather than failing.
func (t *Tokenizer) Encode(text string) []Token {
	runes := []rune(text)
	tokens := []Token{}

	pos := 0
	atWordStart := true
	for pos < len(runes) {
		if runes[pos] == ' ' {
			pos++
			atWordStart = true
			continue
		}

		piece, length := t.longestMatch(runes, pos, atWordStart)
		if length == 0 {
			tokens = append(tokens, Token{ID: t.unkID, Start: pos, End: pos + 1})
			pos++
			atWordStart = false
			continue
		}
		tokens = append(tokens, Token{ID: t.ids[piece], Start: pos, End: pos + length})
		pos += length
		atWordStart = false
	}
	return tokens
}

// longestMatch finds the longest vocabulary piece starting at pos.
// Word-initial positions prefer boundary-marked pieces, matching the
// SentencePiece convention.
func (t *Tokenizer) longestMatch(runes []rune, pos int, atWordStart bool) (string, int) {
	limit := t.maxPieceLen
	if rest := len(runes) - pos; rest < limit {
		limit = rest
	}
	for n := limit; n > 0; n-- {
		candidate := string(runes[pos : pos+n])
		if atWordStart {
			if _, ok := t.ids[wordBoundary+candidate]; ok {
				return wordBoundary + candidate, n
			}
		}
		if _, ok := t.ids[candidate]; ok && !strings.HasPrefix(candidate, wordBoundary) {
			return candidate, n
		}
	}
	return "", 0
}
