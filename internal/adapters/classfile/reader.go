// Package classfile decodes JVM class files into domain.ClassData.
package classfile

import (
	"bytes"

	parser "github.com/wreulicke/classfile-parser"
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ClassReader = (*Reader)(nil)

// Reader implements ports.ClassReader with the classfile-parser library.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses a class file.
func (r *Reader) Read(data []byte) (*domain.ClassData, error) {
	cf, err := parser.New(bytes.NewReader(data)).Parse()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrClassReadFailed.Error())
	}
	cp := cf.ConstantPool

	name, err := cf.ThisClassName()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrClassReadFailed.Error())
	}
	cd := &domain.ClassData{
		InternalName: name,
		Access:       domain.AccessFlags(cf.AccessFlags),
		Deprecated:   cf.Deprecated() != nil,
	}
	if cf.SuperClass != 0 {
		super, err := cf.SuperClassName()
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "class", name)
		}
		cd.SuperName = super
	}
	for _, idx := range cf.Interfaces {
		iface, err := cp.GetClassName(idx)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "class", name)
		}
		cd.Interfaces = append(cd.Interfaces, iface)
	}
	if sig := cf.Signature(); sig != nil {
		if utf8 := cp.LookupUtf8(sig.Signature); utf8 != nil {
			cd.Signature = utf8.String()
		}
	}
	if sf := cf.SourceFile(); sf != nil {
		if utf8 := cp.LookupUtf8(sf.SourcefileIndex); utf8 != nil {
			cd.SourceFile = utf8.String()
		}
	}

	for _, f := range cf.Fields {
		fname, err := f.Name(cp)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "class", name)
		}
		desc, err := f.Descriptor(cp)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "field", fname)
		}
		m := domain.MemberData{Name: fname, Descriptor: desc, Access: domain.AccessFlags(f.AccessFlags)}
		if sig := f.Signature(); sig != nil {
			if utf8 := cp.LookupUtf8(sig.Signature); utf8 != nil {
				m.Signature = utf8.String()
			}
		}
		cd.Fields = append(cd.Fields, m)
	}

	for _, mi := range cf.Methods {
		mname, err := mi.Name(cp)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "class", name)
		}
		desc, err := mi.Descriptor(cp)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "method", mname)
		}
		m := domain.MemberData{Name: mname, Descriptor: desc, Access: domain.AccessFlags(mi.AccessFlags)}
		if sig := mi.Signature(); sig != nil {
			if utf8 := cp.LookupUtf8(sig.Signature); utf8 != nil {
				m.Signature = utf8.String()
			}
		}
		if exc := mi.Exceptions(); exc != nil {
			for _, idx := range exc.ExceptionIndexes {
				ename, err := cp.GetClassName(idx)
				if err != nil {
					return nil, zerr.With(zerr.Wrap(err, domain.ErrClassReadFailed.Error()), "method", mname)
				}
				m.Exceptions = append(m.Exceptions, ename)
			}
		}
		cd.Methods = append(cd.Methods, m)
	}
	return cd, nil
}

// Signer returns the structural signature function for class payloads read by r.
func Signer(r ports.ClassReader) domain.SignatureFunc {
	return func(payload []byte) (string, error) {
		cd, err := r.Read(payload)
		if err != nil {
			return "", err
		}
		return domain.StructuralSignature(cd), nil
	}
}
