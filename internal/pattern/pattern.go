// Package pattern compiles the include/exclude expressions of a filter.
//
// Expressions are written in POSIX syntax, extended (ERE, the default) or
// basic (BRE, as understood by grep without -E). Both are rewritten into
// Go's RE2 syntax and compiled with leftmost-longest semantics.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Syntax selects the POSIX dialect of an expression.
type Syntax int

const (
	Extended Syntax = iota
	Basic
)

func (s Syntax) String() string {
	if s == Basic {
		return "basic"
	}
	return "extended"
}

// Compile translates expr from the given dialect and compiles it.
func Compile(expr string, syntax Syntax, ignoreCase bool) (*regexp.Regexp, error) {
	translated, err := Translate(expr, syntax)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", expr, err)
	}
	if ignoreCase {
		translated = "(?i)" + translated
	}

	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", expr, err)
	}
	re.Longest()
	return re, nil
}

// Translate rewrites a POSIX expression into RE2 syntax.
func Translate(expr string, syntax Syntax) (string, error) {
	t := translator{src: expr, basic: syntax == Basic}
	return t.run()
}

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

type translator struct {
	src   string
	pos   int
	basic bool
	out   strings.Builder
}

func (t *translator) run() (string, error) {
	// atStart is true where a BRE treats '*' as literal and '^' as an anchor.
	atStart := true

	for t.pos < len(t.src) {
		c := t.src[t.pos]

		switch {
		case c == '[':
			if err := t.bracket(); err != nil {
				return "", err
			}
			atStart = false
			continue

		case c == '\\':
			if t.pos+1 >= len(t.src) {
				return "", fmt.Errorf("trailing backslash")
			}
			atStart = t.escape(t.src[t.pos+1])
			t.pos += 2
			continue

		case t.basic:
			atStart = t.basicLiteral(c, atStart)

		default:
			t.out.WriteByte(c)
			atStart = c == '(' || c == '|'
		}
		t.pos++
	}

	return t.out.String(), nil
}

// escape handles a backslash sequence and reports whether the next
// position counts as the start of a (sub)expression.
func (t *translator) escape(c byte) bool {
	switch c {
	case '<', '>':
		// GNU word boundaries.
		t.out.WriteString(`\b`)
		return false
	}

	if t.basic {
		switch c {
		case '(', '|':
			t.out.WriteByte(c)
			return true
		case ')', '{', '}', '+', '?':
			t.out.WriteByte(c)
			return false
		}
	}

	t.out.WriteByte('\\')
	t.out.WriteByte(c)
	return false
}

// basicLiteral writes one unescaped BRE byte.
func (t *translator) basicLiteral(c byte, atStart bool) bool {
	switch c {
	case '(', ')', '{', '}', '|', '+', '?':
		t.out.WriteByte('\\')
		t.out.WriteByte(c)
	case '*':
		if atStart {
			t.out.WriteString(`\*`)
		} else {
			t.out.WriteByte('*')
		}
	case '^':
		if atStart {
			t.out.WriteByte('^')
			return true
		}
		t.out.WriteString(`\^`)
	case '$':
		if t.anchorsEnd() {
			t.out.WriteByte('$')
		} else {
			t.out.WriteString(`\$`)
		}
	default:
		t.out.WriteByte(c)
	}
	return false
}

// anchorsEnd reports whether a BRE '$' at t.pos ends the expression or
// the enclosing group.
func (t *translator) anchorsEnd() bool {
	rest := t.src[t.pos+1:]
	return rest == "" || strings.HasPrefix(rest, `\)`) || strings.HasPrefix(rest, `\|`)
}

// bracket copies a bracket expression starting at t.pos. Backslash is
// literal inside POSIX brackets and has to be escaped for RE2.
func (t *translator) bracket() error {
	start := t.pos
	t.pos++
	t.out.WriteByte('[')

	if t.pos < len(t.src) && t.src[t.pos] == '^' {
		t.out.WriteByte('^')
		t.pos++
	}
	if t.pos < len(t.src) && t.src[t.pos] == ']' {
		t.out.WriteString(`\]`)
		t.pos++
	}

	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == ']':
			t.out.WriteByte(']')
			t.pos++
			return nil

		case c == '[' && t.pos+1 < len(t.src) && strings.IndexByte(":.=", t.src[t.pos+1]) >= 0:
			if err := t.bracketItem(t.src[t.pos+1]); err != nil {
				return err
			}

		case c == '\\':
			t.out.WriteString(`\\`)
			t.pos++

		case c == '[':
			t.out.WriteString(`\[`)
			t.pos++

		default:
			t.out.WriteByte(c)
			t.pos++
		}
	}

	return fmt.Errorf("unterminated bracket expression at offset %d", start)
}

// bracketItem copies [:class:] verbatim and reduces single-character
// [.x.] and [=x=] items to an escaped literal.
func (t *translator) bracketItem(kind byte) error {
	closer := string([]byte{kind, ']'})
	end := strings.Index(t.src[t.pos+2:], closer)
	if end < 0 {
		return fmt.Errorf("unterminated [%c item at offset %d", kind, t.pos)
	}
	body := t.src[t.pos+2 : t.pos+2+end]
	t.pos += 2 + end + 2

	if kind == ':' {
		t.out.WriteString("[:" + body + ":]")
		return nil
	}
	if len([]rune(body)) != 1 {
		return fmt.Errorf("unsupported collating element [%c%s%c]", kind, body, kind)
	}
	t.out.WriteString(regexp.QuoteMeta(body))
	return nil
}
