package classfile_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/javelin/internal/adapters/classfile"
	"go.trai.ch/javelin/internal/core/domain"
)

// classFile assembles a minimal class file without code attributes.
type classFile struct {
	pool    bytes.Buffer
	count   uint16
	utf8s   map[string]uint16
	classes map[string]uint16
}

type member struct {
	access     uint16
	name, desc string
}

func newClassFile() *classFile {
	return &classFile{count: 1, utf8s: map[string]uint16{}, classes: map[string]uint16{}}
}

func (c *classFile) utf8(s string) uint16 {
	if idx, ok := c.utf8s[s]; ok {
		return idx
	}
	c.pool.WriteByte(1)
	_ = binary.Write(&c.pool, binary.BigEndian, uint16(len(s)))
	c.pool.WriteString(s)
	idx := c.count
	c.count++
	c.utf8s[s] = idx
	return idx
}

func (c *classFile) class(name string) uint16 {
	if idx, ok := c.classes[name]; ok {
		return idx
	}
	nameIdx := c.utf8(name)
	c.pool.WriteByte(7)
	_ = binary.Write(&c.pool, binary.BigEndian, nameIdx)
	idx := c.count
	c.count++
	c.classes[name] = idx
	return idx
}

func (c *classFile) build(access uint16, name, super string, ifaces []string, fields, methods []member) []byte {
	this := c.class(name)
	superIdx := c.class(super)
	ifaceIdx := make([]uint16, len(ifaces))
	for i, n := range ifaces {
		ifaceIdx[i] = c.class(n)
	}
	type entry struct{ access, name, desc uint16 }
	toEntries := func(ms []member) []entry {
		out := make([]entry, len(ms))
		for i, m := range ms {
			out[i] = entry{m.access, c.utf8(m.name), c.utf8(m.desc)}
		}
		return out
	}
	fe, me := toEntries(fields), toEntries(methods)

	var out bytes.Buffer
	w := func(v any) { _ = binary.Write(&out, binary.BigEndian, v) }
	w(uint32(0xCAFEBABE))
	w(uint16(0))
	w(uint16(52))
	w(c.count)
	out.Write(c.pool.Bytes())
	w(access)
	w(this)
	w(superIdx)
	w(uint16(len(ifaceIdx)))
	for _, i := range ifaceIdx {
		w(i)
	}
	for _, list := range [][]entry{fe, me} {
		w(uint16(len(list)))
		for _, e := range list {
			w(e.access)
			w(e.name)
			w(e.desc)
			w(uint16(0))
		}
	}
	w(uint16(0))
	return out.Bytes()
}

func sampleClass(privateField string) []byte {
	return newClassFile().build(
		0x0021, "com/example/Widget", "java/lang/Object", []string{"java/io/Serializable"},
		[]member{{0x0001, "size", "I"}, {0x0002, privateField, "Ljava/lang/String;"}},
		[]member{{0x0001, "<init>", "()V"}, {0x0001 | 0x0400, "render", "(Ljava/lang/String;[J)V"}},
	)
}

func TestReader_Read(t *testing.T) {
	t.Parallel()

	cd, err := classfile.NewReader().Read(sampleClass("secret"))
	require.NoError(t, err)

	assert.Equal(t, "com/example/Widget", cd.InternalName)
	assert.True(t, cd.Access.Has(domain.AccPublic))
	assert.False(t, cd.IsInterface())
	assert.Equal(t, "java/lang/Object", cd.SuperName)
	assert.Equal(t, []string{"java/io/Serializable"}, cd.Interfaces)
	require.Len(t, cd.Fields, 2)
	assert.Equal(t, "size", cd.Fields[0].Name)
	assert.Equal(t, "I", cd.Fields[0].Descriptor)
	assert.True(t, cd.Fields[1].Access.Has(domain.AccPrivate))
	require.Len(t, cd.Methods, 2)
	assert.Equal(t, "render", cd.Methods[1].Name)
	assert.True(t, cd.Methods[1].Access.Has(domain.AccAbstract))
	assert.Equal(t, "(Ljava/lang/String;[J)V", cd.Methods[1].Descriptor)
}

func TestReader_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := classfile.NewReader().Read([]byte("not a class"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrClassReadFailed.Error())
}

func TestSigner_IgnoresPrivateMembers(t *testing.T) {
	t.Parallel()

	sign := classfile.Signer(classfile.NewReader())
	a, err := sign(sampleClass("secret"))
	require.NoError(t, err)
	b, err := sign(sampleClass("hidden"))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := newClassFile().build(
		0x0021, "com/example/Widget", "java/lang/Object", []string{"java/io/Serializable"},
		[]member{{0x0001, "size", "J"}},
		[]member{{0x0001, "<init>", "()V"}, {0x0001 | 0x0400, "render", "(Ljava/lang/String;[J)V"}},
	)
	c, err := sign(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
