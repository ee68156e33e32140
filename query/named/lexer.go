package named

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// sqlLexer splits SQL into the token classes that matter for parameter
// detection. Anything inside comments, quoted strings, quoted identifiers and
// dollar-quoted bodies is opaque. Rules are tried in order. DollarTag only
// matches the opening $tag$ or $$; tokenize finds the closing tag since
// regexp has no backreferences.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `'(?:[^']|'')*'`},
	{Name: "QuotedIdent", Pattern: `"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`"},
	{Name: "DollarTag", Pattern: `\$(?:[\p{L}_][\p{L}\p{N}_]*)?\$`},
	{Name: "Positional", Pattern: `\$\d+|\?`},
	{Name: "Cast", Pattern: `::`},
	{Name: "Named", Pattern: `:[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: "[^\\s'\"`$:?\\-/]+|."},
})

var (
	tokDollarTag  = sqlLexer.Symbols()["DollarTag"]
	tokPositional = sqlLexer.Symbols()["Positional"]
	tokNamed      = sqlLexer.Symbols()["Named"]
)

type segmentKind uint8

const (
	segmentText segmentKind = iota
	segmentNamed
	segmentPositional
)

type segment struct {
	kind  segmentKind
	text  string // literal SQL, or the placeholder as written
	name  string // parameter name without the colon
	index int    // zero-based position for positional placeholders
}

// tokenize lexes sql into segments, merging adjacent literal text.
func tokenize(sql string) ([]segment, error) {
	lex, err := sqlLexer.LexString("", sql)
	if err != nil {
		return nil, err
	}

	var (
		segs      []segment
		text      []byte
		anonymous int
		base      int // offset of the current lexer input within sql
	)
	flush := func() {
		if len(text) > 0 {
			segs = append(segs, segment{kind: segmentText, text: string(text)})
			text = text[:0]
		}
	}

	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}
		switch tok.Type {
		case tokDollarTag:
			start := base + tok.Pos.Offset
			body := start + len(tok.Value)
			end := strings.Index(sql[body:], tok.Value)
			if end < 0 {
				// Unterminated body runs to the end of the statement.
				text = append(text, sql[start:]...)
				flush()
				return segs, nil
			}
			base = body + end + len(tok.Value)
			text = append(text, sql[start:base]...)
			if lex, err = sqlLexer.LexString("", sql[base:]); err != nil {
				return nil, err
			}
		case tokNamed:
			flush()
			segs = append(segs, segment{kind: segmentNamed, text: tok.Value, name: tok.Value[1:]})
		case tokPositional:
			flush()
			idx := anonymous
			if tok.Value == "?" {
				anonymous++
			} else {
				n, err := strconv.Atoi(tok.Value[1:])
				if err != nil || n < 1 {
					return nil, fmt.Errorf("named: invalid positional parameter %q at %s", tok.Value, tok.Pos)
				}
				idx = n - 1
			}
			segs = append(segs, segment{kind: segmentPositional, text: tok.Value, index: idx})
		default:
			text = append(text, tok.Value...)
		}
	}
	flush()
	return segs, nil
}
