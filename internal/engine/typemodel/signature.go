package typemodel

import (
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/zerr"
)

// Generic signatures (JVMS 4.7.9.1) and plain descriptors share one grammar; a
// descriptor is a signature without type arguments or variables. The parser produces a
// small tree that the builder binds to the type model once every class is known.

type sigKind uint8

const (
	sigPrimitive sigKind = iota
	sigClass
	sigArray
	sigVariable
)

// sigType is a parsed Java type.
type sigType struct {
	kind sigKind
	// prim is the descriptor character of a primitive.
	prim byte
	// segments holds Outer<args>.Inner<args> for class types.
	segments []sigSegment
	// component is the element type of an array.
	component *sigType
	// name is the name of a type variable.
	name string
}

// internalName joins the class segments with '$'.
func (t *sigType) internalName() string {
	names := make([]string, len(t.segments))
	for i, s := range t.segments {
		names[i] = s.name
	}
	return strings.Join(names, "$")
}

type sigSegment struct {
	name string
	args []sigArg
}

// sigArg is a type argument: '*' for an unbounded wildcard, '+' and '-' for bounded
// ones, 0 for an exact type.
type sigArg struct {
	wildcard byte
	typ      *sigType
}

type sigTypeParam struct {
	name string
	// bounds holds the class bound first (nil when only interface bounds are given).
	bounds []*sigType
}

type classSignature struct {
	typeParams []sigTypeParam
	super      *sigType
	interfaces []*sigType
}

type methodSignature struct {
	typeParams []sigTypeParam
	params     []*sigType
	ret        *sigType
	throws     []*sigType
}

type sigParser struct {
	s   string
	pos int
}

func malformed(sig string, pos int) error {
	return zerr.With(zerr.With(domain.ErrMalformedSignature, "signature", sig), "offset", pos)
}

func parseClassSignature(s string) (*classSignature, error) {
	p := &sigParser{s: s}
	out := &classSignature{}
	var err error
	if out.typeParams, err = p.typeParams(); err != nil {
		return nil, err
	}
	if out.super, err = p.classType(); err != nil {
		return nil, err
	}
	for !p.done() {
		iface, err := p.classType()
		if err != nil {
			return nil, err
		}
		out.interfaces = append(out.interfaces, iface)
	}
	return out, nil
}

func parseMethodSignature(s string) (*methodSignature, error) {
	p := &sigParser{s: s}
	out := &methodSignature{}
	var err error
	if out.typeParams, err = p.typeParams(); err != nil {
		return nil, err
	}
	if !p.eat('(') {
		return nil, malformed(s, p.pos)
	}
	for !p.eat(')') {
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		out.params = append(out.params, t)
	}
	if p.eat('V') {
		out.ret = &sigType{kind: sigPrimitive, prim: 'V'}
	} else if out.ret, err = p.typ(); err != nil {
		return nil, err
	}
	for p.eat('^') {
		t, err := p.typ()
		if err != nil {
			return nil, err
		}
		out.throws = append(out.throws, t)
	}
	if !p.done() {
		return nil, malformed(s, p.pos)
	}
	return out, nil
}

func parseFieldSignature(s string) (*sigType, error) {
	p := &sigParser{s: s}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, malformed(s, p.pos)
	}
	return t, nil
}

func (p *sigParser) done() bool { return p.pos >= len(p.s) }

func (p *sigParser) peek() byte {
	if p.done() {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) eat(c byte) bool {
	if p.peek() == c && !p.done() {
		p.pos++
		return true
	}
	return false
}

func (p *sigParser) typeParams() ([]sigTypeParam, error) {
	if !p.eat('<') {
		return nil, nil
	}
	var out []sigTypeParam
	for !p.eat('>') {
		colon := strings.IndexByte(p.s[p.pos:], ':')
		if colon <= 0 {
			return nil, malformed(p.s, p.pos)
		}
		tp := sigTypeParam{name: p.s[p.pos : p.pos+colon]}
		p.pos += colon + 1

		// The class bound may be empty, as in <T::Ljava/lang/Comparable;>.
		if c := p.peek(); c != ':' && c != '>' {
			b, err := p.typ()
			if err != nil {
				return nil, err
			}
			tp.bounds = append(tp.bounds, b)
		}
		for p.eat(':') {
			b, err := p.typ()
			if err != nil {
				return nil, err
			}
			tp.bounds = append(tp.bounds, b)
		}
		out = append(out, tp)
	}
	return out, nil
}

func (p *sigParser) typ() (*sigType, error) {
	switch c := p.peek(); c {
	case 'L':
		return p.classType()
	case 'T':
		p.pos++
		semi := strings.IndexByte(p.s[p.pos:], ';')
		if semi <= 0 {
			return nil, malformed(p.s, p.pos)
		}
		t := &sigType{kind: sigVariable, name: p.s[p.pos : p.pos+semi]}
		p.pos += semi + 1
		return t, nil
	case '[':
		p.pos++
		component, err := p.typ()
		if err != nil {
			return nil, err
		}
		return &sigType{kind: sigArray, component: component}, nil
	case 'Z', 'B', 'C', 'S', 'I', 'J', 'F', 'D':
		p.pos++
		return &sigType{kind: sigPrimitive, prim: c}, nil
	default:
		return nil, malformed(p.s, p.pos)
	}
}

func (p *sigParser) classType() (*sigType, error) {
	if !p.eat('L') {
		return nil, malformed(p.s, p.pos)
	}
	t := &sigType{kind: sigClass}
	for {
		start := p.pos
		for !p.done() {
			if c := p.peek(); c == '<' || c == '.' || c == ';' {
				break
			}
			p.pos++
		}
		if p.pos == start || p.done() {
			return nil, malformed(p.s, p.pos)
		}
		seg := sigSegment{name: p.s[start:p.pos]}
		if p.eat('<') {
			for !p.eat('>') {
				arg, err := p.typeArg()
				if err != nil {
					return nil, err
				}
				seg.args = append(seg.args, arg)
			}
		}
		t.segments = append(t.segments, seg)
		if p.eat(';') {
			return t, nil
		}
		if !p.eat('.') {
			return nil, malformed(p.s, p.pos)
		}
	}
}

func (p *sigParser) typeArg() (sigArg, error) {
	switch c := p.peek(); c {
	case '*':
		p.pos++
		return sigArg{wildcard: '*'}, nil
	case '+', '-':
		p.pos++
		t, err := p.typ()
		if err != nil {
			return sigArg{}, err
		}
		return sigArg{wildcard: c, typ: t}, nil
	case 0:
		return sigArg{}, malformed(p.s, p.pos)
	default:
		t, err := p.typ()
		if err != nil {
			return sigArg{}, err
		}
		return sigArg{typ: t}, nil
	}
}

// descriptorType wraps an internal class name as a parsed type.
func descriptorType(internalName string) *sigType {
	return &sigType{kind: sigClass, segments: []sigSegment{{name: internalName}}}
}
