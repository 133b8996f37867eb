// Package comments segments a text into comment blocks under a language's
// comment grammar.
package comments

import (
	"strings"

	"github.com/multimediallc/copyright-headers/pkg/language"
	"github.com/multimediallc/copyright-headers/pkg/textedit"
)

// Block is a maximal run of consecutive comment lines. A block holds either
// single-line comments or one block comment region, never both.
type Block struct {
	Start     int
	End       int
	Lines     []string
	Multiline bool
}

// Span returns the inclusive line range of the block.
func (b Block) Span() textedit.Span {
	return textedit.Span{Start: b.Start, End: b.End}
}

type scanState int

const (
	outside scanState = iota
	inMultiline
)

type scanner struct {
	state  scanState
	start  int
	buf    []string
	blocks []Block
}

// flush emits the buffered lines as a block, if any, and empties the buffer.
func (s scanner) flush() scanner {
	if len(s.buf) == 0 {
		return s
	}
	s.blocks = append(s.blocks, Block{
		Start:     s.start,
		End:       s.start + len(s.buf) - 1,
		Lines:     s.buf,
		Multiline: s.state == inMultiline,
	})
	s.buf = nil
	return s
}

// Scan returns the comment blocks of lines in order. Blocks never overlap.
func Scan(lines []string, lang *language.Language) []Block {
	mlStart, mlEnd, hasMultiline := lang.Multiline()
	marker := lang.CommentMarker()

	s := scanner{state: outside}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if s.state == inMultiline {
			s.buf = append(s.buf, line)
			if strings.HasSuffix(trimmed, mlEnd) {
				s = s.flush()
				s.start = i + 1
				s.state = outside
			}
			continue
		}

		if hasMultiline && strings.HasPrefix(trimmed, mlStart) {
			// Drop the opener first so that a closer identical to it is not
			// mistaken for the end of the comment it opens.
			rest := strings.Replace(trimmed, mlStart, "", 1)
			if !strings.Contains(rest, mlEnd) {
				s = s.flush()
				s.start = i
				s.state = inMultiline
			}
			s.buf = append(s.buf, line)
			continue
		}

		if strings.HasPrefix(line, marker) {
			s.buf = append(s.buf, line)
			continue
		}

		s = s.flush()
		s.start = i + 1
	}
	return s.flush().blocks
}
