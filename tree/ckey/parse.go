package ckey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax reports a malformed key expression. Distinct from a key that
// matches nothing, which is a valid empty result.
var ErrSyntax = errors.New("invalid key")

// reserved are the bytes that end a bare name. Names containing them must
// be quoted.
const reserved = ".[]*@'\"\\ \t\n"

// Parse parses a key expression. The empty key parses to an empty Key,
// which addresses the root.
func Parse(key string) (Key, error) {
	p := parser{in: key}
	return p.parse()
}

type parser struct {
	in  string
	pos int
}

func (p *parser) parse() (Key, error) {
	var k Key
	for p.pos < len(p.in) {
		if len(k) > 0 {
			if p.in[p.pos] != '.' {
				return nil, p.errf("expected '.' at offset %d", p.pos)
			}
			p.pos++
		}
		seg, err := p.segment()
		if err != nil {
			return nil, err
		}
		if seg.IsAttribute() && p.pos < len(p.in) {
			return nil, p.errf("attribute segment must be last")
		}
		k = append(k, seg)
	}
	return k, nil
}

func (p *parser) segment() (Segment, error) {
	if p.pos >= len(p.in) {
		return Segment{}, p.errf("empty name at offset %d", p.pos)
	}
	switch p.in[p.pos] {
	case '@':
		p.pos++
		name, err := p.name()
		if err != nil {
			return Segment{}, err
		}
		return Segment{Attribute: name}, nil
	case '*':
		p.pos++
		return p.index(Segment{Wildcard: true})
	default:
		name, err := p.name()
		if err != nil {
			return Segment{}, err
		}
		return p.index(Segment{Name: name})
	}
}

func (p *parser) name() (string, error) {
	if p.pos >= len(p.in) {
		return "", p.errf("empty name at offset %d", p.pos)
	}
	if q := p.in[p.pos]; q == '\'' || q == '"' {
		return p.quoted(q)
	}
	start := p.pos
	for p.pos < len(p.in) && !strings.ContainsRune(reserved, rune(p.in[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errf("empty name at offset %d", start)
	}
	return p.in[start:p.pos], nil
}

func (p *parser) quoted(q byte) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.in) {
		switch c := p.in[p.pos]; c {
		case '\\':
			if p.pos+1 >= len(p.in) {
				return "", p.errf("trailing backslash")
			}
			b.WriteByte(p.in[p.pos+1])
			p.pos += 2
		case q:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errf("unterminated quote at offset %d", start)
}

func (p *parser) index(seg Segment) (Segment, error) {
	if p.pos >= len(p.in) || p.in[p.pos] != '[' {
		return seg, nil
	}
	end := strings.IndexByte(p.in[p.pos:], ']')
	if end < 0 {
		return Segment{}, p.errf("expected '[' <index> ']' at offset %d", p.pos)
	}
	body := p.in[p.pos+1 : p.pos+end]
	p.pos += end + 1
	if body == "*" {
		seg.IndexAll = true
		return seg, nil
	}
	i, err := strconv.Atoi(body)
	if err != nil || i < 0 {
		return Segment{}, p.errf("bad index %q", body)
	}
	seg.Index = &i
	return seg, nil
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrSyntax, p.in, fmt.Sprintf(format, args...))
}
