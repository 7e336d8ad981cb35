package reader

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/kestrel-lang/kestrel/value"
)

// terminators is the set of characters that end a bare token or glob atom,
// per spec §4.3's token production.
const terminators = "#$'(;`^~?*[)|&{}><"

// Parser translates a character stream into value.Value ASTs (spec §4.3).
// It does not resolve bindings: symbols and variable occurrences are both
// produced as plain interned symbols, left to eval's dispatch (spec §4.3:
// "a purely syntactic tree").
type Parser struct {
	src    *value.CharSource
	pool   *value.Pool
	intern func(string) *value.Value
}

// New returns a Parser reading from src.
func New(pool *value.Pool, intern func(string) *value.Value, src *value.CharSource) *Parser {
	return &Parser{src: src, pool: pool, intern: intern}
}

// NewFromReader is a convenience constructor wrapping an io.Reader.
func NewFromReader(pool *value.Pool, intern func(string) *value.Value, r io.Reader) *Parser {
	return New(pool, intern, value.NewCharSource(bufio.NewReader(r), nil))
}

// NewFromString is a convenience constructor for in-memory source text.
func NewFromString(pool *value.Pool, intern func(string) *value.Value, s string) *Parser {
	return NewFromReader(pool, intern, strings.NewReader(s))
}

// Next reads and returns the next top-level form, or io.EOF once the
// source is exhausted.
func (p *Parser) Next() (*value.Value, error) {
	if err := p.skipSpaceAndComments(); err != nil {
		return nil, err
	}
	return p.parseForm()
}

// Line returns the current 1-based line number, for diagnostics.
func (p *Parser) Line() int { return p.src.Line() }

func (p *Parser) skipSpaceAndComments() error {
	for {
		r, err := p.src.Peek()
		if err != nil {
			return err
		}
		switch {
		case r == ';':
			for {
				r, err := p.src.Next()
				if err != nil || r == '\n' {
					break
				}
			}
		case isSpace(r):
			p.src.Next()
		default:
			return nil
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isTerminator(r rune) bool {
	return isSpace(r) || strings.ContainsRune(terminators, r)
}

// parseForm parses exactly one form, assuming skipSpaceAndComments has
// already run (or the caller is at a sub-form boundary where a single
// lookahead suffices, e.g. right after an open paren).
func (p *Parser) parseForm() (*value.Value, error) {
	r, err := p.src.Peek()
	if err != nil {
		return nil, err
	}
	switch r {
	case '(':
		p.src.Next()
		return p.parseList()
	case '`':
		p.src.Next()
		return p.parseWrapped("quote")
	case '^':
		p.src.Next()
		return p.parseWrapped("quasiquote")
	case '~':
		p.src.Next()
		return p.parseWrapped("unquote")
	case '@':
		p.src.Next()
		return p.parseWrapped("@")
	case '$':
		p.src.Next()
		return p.parseArgRef()
	case '#':
		p.src.Next()
		return p.parseCharLit()
	case '\'':
		p.src.Next()
		return p.parseString()
	case '?', '*', '[':
		return p.parseGlob()
	case ')':
		return nil, syntaxErrorf(p.src.Line(), r, "unexpected ')'")
	default:
		return p.parseToken()
	}
}

// parseWrapped parses exactly one following form and wraps it as (head
// form), used for quote/back-quote/unquote/multi-value sugar.
func (p *Parser) parseWrapped(head string) (*value.Value, error) {
	if err := p.skipSpaceAndComments(); err != nil {
		return nil, errors.Wrap(err, "expected form after sigil")
	}
	inner, err := p.parseForm()
	if err != nil {
		return nil, err
	}
	return value.NewCons(p.pool, p.intern(head), value.NewCons(p.pool, inner, value.Nil)), nil
}

// parseList implements: '(' (atom | list)* ('&' atom)? ')'
func (p *Parser) parseList() (*value.Value, error) {
	var elems []*value.Value
	var tail *value.Value = value.Nil
	for {
		if err := p.skipSpaceAndComments(); err != nil {
			return nil, errors.Wrap(err, "unterminated list")
		}
		r, err := p.src.Peek()
		if err != nil {
			return nil, errors.Wrap(err, "unterminated list")
		}
		if r == ')' {
			p.src.Next()
			break
		}
		if r == '&' {
			p.src.Next()
			if err := p.skipSpaceAndComments(); err != nil {
				return nil, errors.Wrap(err, "expected dotted tail")
			}
			t, err := p.parseForm()
			if err != nil {
				return nil, err
			}
			tail = t
			if err := p.skipSpaceAndComments(); err != nil {
				return nil, errors.Wrap(err, "unterminated list")
			}
			closing, err := p.src.Next()
			if err != nil {
				return nil, errors.Wrap(err, "unterminated list")
			}
			if closing != ')' {
				return nil, syntaxErrorf(p.src.Line(), closing, "expected ')' after dotted tail")
			}
			break
		}
		form, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		elems = append(elems, form)
	}
	result := tail
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.NewCons(p.pool, elems[i], result)
	}
	return result, nil
}

// parseArgRef implements: '$' digits | '$@' | '$#' | '$' name
func (p *Parser) parseArgRef() (*value.Value, error) {
	r, err := p.src.Peek()
	if err != nil {
		return nil, errors.Wrap(err, "expected form after '$'")
	}
	switch {
	case r == '@':
		p.src.Next()
		return value.NewCons(p.pool, p.intern("arg"), value.Nil), nil
	case r == '#':
		p.src.Next()
		return value.NewCons(p.pool, p.intern("argc"), value.Nil), nil
	case isDigit(r) || r == '-':
		text, err := p.readRun(func(r rune) bool { return isDigit(r) || r == '-' })
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, syntaxErrorf(p.src.Line(), r, "invalid $ argument index %q", text)
		}
		return value.NewCons(p.pool, p.intern("arg"), value.NewCons(p.pool, value.Int(n), value.Nil)), nil
	default:
		name, err := p.readToken()
		if err != nil {
			return nil, err
		}
		return p.intern(name), nil
	}
}

// parseCharLit implements: '#' char | '#\' esc
func (p *Parser) parseCharLit() (*value.Value, error) {
	r, err := p.src.Next()
	if err != nil {
		return nil, errors.Wrap(err, "expected char literal")
	}
	if r == '\\' {
		esc, err := p.readEscape()
		if err != nil {
			return nil, err
		}
		return value.Int(int64(esc)), nil
	}
	return value.Int(int64(r)), nil
}

// parseString implements: '\'' chars '\'', with '' as an escaped quote.
func (p *Parser) parseString() (*value.Value, error) {
	var b strings.Builder
	for {
		r, err := p.src.Next()
		if err != nil {
			return nil, errors.Wrap(err, "unterminated string literal")
		}
		if r == '\'' {
			nr, err := p.src.Peek()
			if err == nil && nr == '\'' {
				p.src.Next()
				b.WriteByte('\'')
				continue
			}
			break
		}
		b.WriteRune(r)
	}
	return value.NewString(p.pool, b.String()), nil
}

// parseGlob implements the glob atom: `? | * | [ ... ]`, read as a raw
// pattern fragment for expansion-time matching (spec §4.10).
func (p *Parser) parseGlob() (*value.Value, error) {
	var b strings.Builder
	for {
		r, err := p.src.Peek()
		if err != nil || isTerminator(r) {
			break
		}
		p.src.Next()
		if r == '[' {
			b.WriteRune(r)
			for {
				cr, err := p.src.Next()
				if err != nil {
					return nil, errors.Wrap(err, "unterminated glob character class")
				}
				b.WriteRune(cr)
				if cr == ']' {
					break
				}
			}
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return nil, syntaxErrorf(p.src.Line(), 0, "empty glob atom")
	}
	return value.NewCons(p.pool, p.intern("glob"),
		value.NewCons(p.pool, value.NewString(p.pool, b.String()), value.Nil)), nil
}

// parseToken implements the bare-token production, classifying the result
// as an integer or an interned symbol.
func (p *Parser) parseToken() (*value.Value, error) {
	text, err := p.readToken()
	if err != nil {
		return nil, err
	}
	if n, ok := parseIntegerToken(text); ok {
		return value.Int(n), nil
	}
	return p.intern(text), nil
}

// readToken reads characters up to the next terminator, decoding C-style
// backslash escapes and octal \NNN sequences along the way.
func (p *Parser) readToken() (string, error) {
	var b strings.Builder
	for {
		r, err := p.src.Peek()
		if err != nil || isTerminator(r) {
			break
		}
		p.src.Next()
		if r == '\\' {
			esc, err := p.readEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		r, _ := p.src.Peek()
		return "", syntaxErrorf(p.src.Line(), r, "expected token")
	}
	return b.String(), nil
}

// readRun reads characters accepted by pred, with no escape decoding.
func (p *Parser) readRun(pred func(rune) bool) (string, error) {
	var b strings.Builder
	for {
		r, err := p.src.Peek()
		if err != nil || !pred(r) {
			break
		}
		p.src.Next()
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		r, _ := p.src.Peek()
		return "", syntaxErrorf(p.src.Line(), r, "expected digits")
	}
	return b.String(), nil
}

// readEscape decodes the character(s) following a backslash: the standard
// C escapes, or up to three octal digits.
func (p *Parser) readEscape() (rune, error) {
	r, err := p.src.Next()
	if err != nil {
		return 0, errors.Wrap(err, "unterminated escape")
	}
	switch r {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		// either a lone \0 or the start of an octal run; try to read up to
		// two more octal digits.
		return p.readOctal(r)
	case '1', '2', '3', '4', '5', '6', '7':
		return p.readOctal(r)
	default:
		return r, nil
	}
}

func (p *Parser) readOctal(first rune) (rune, error) {
	val := int(first - '0')
	for i := 0; i < 2; i++ {
		r, err := p.src.Peek()
		if err != nil || r < '0' || r > '7' {
			break
		}
		p.src.Next()
		val = val*8 + int(r-'0')
	}
	return rune(val), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// parseIntegerToken recognizes spec §4.3's integer token grammar: an
// optional leading '-', then digits with no leading zero unless the token
// is the literal "0".
func parseIntegerToken(s string) (int64, bool) {
	t := s
	if strings.HasPrefix(t, "-") {
		t = t[1:]
	}
	if t == "" {
		return 0, false
	}
	for _, r := range t {
		if !isDigit(r) {
			return 0, false
		}
	}
	if len(t) > 1 && t[0] == '0' {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
