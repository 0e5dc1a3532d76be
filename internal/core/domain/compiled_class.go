package domain

import (
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// BlobToken locates a payload in the blob store.
type BlobToken struct {
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
	// Hash is the content hash of the payload, used to deduplicate writes.
	Hash string `json:"hash,omitempty"`
}

// IsZero reports whether the token refers to nothing.
func (t BlobToken) IsZero() bool {
	return t.Length == 0 && t.Hash == ""
}

// PayloadReader reads a payload back from the blob store.
type PayloadReader interface {
	Read(token BlobToken) ([]byte, error)
}

// SignatureFunc derives the structural signature of a class payload.
type SignatureFunc func(payload []byte) (string, error)

// NoEnclosing marks a top-level class.
const NoEnclosing = -1

// CompiledClass is one compiled class, interface, enum or annotation type.
// It belongs to exactly one CompilationUnit. Its enclosing class is addressed by index
// into the owning unit's class list.
type CompiledClass struct {
	internalName string
	sourceName   string
	enclosing    int
	local        bool
	modifiers    AccessFlags
	payload      BlobToken
	annotations  []Annotation
	members      map[string][]Annotation

	blobs  PayloadReader
	signer SignatureFunc

	mu            sync.Mutex
	signatureHash string
	checked       bool

	unit *CompilationUnit
}

// ClassSpec carries everything needed to build a CompiledClass.
type ClassSpec struct {
	InternalName string
	SourceName   string
	// Enclosing is the index of the enclosing class within the same unit, or NoEnclosing.
	Enclosing int
	Local     bool
	// Modifiers are the access flags declared in source. Nested classes lose their
	// private, protected and static bits in the class file's own access flags.
	Modifiers   AccessFlags
	Payload     BlobToken
	Annotations []Annotation
	// MemberAnnotations holds field and method annotations keyed by FieldKey or MethodKey.
	MemberAnnotations map[string][]Annotation
	// SignatureHash may be set when restoring a class whose signature is already known.
	SignatureHash string
	Blobs         PayloadReader
	Signer        SignatureFunc
}

// NewCompiledClass builds a class from spec.
func NewCompiledClass(spec ClassSpec) *CompiledClass {
	sourceName := spec.SourceName
	if sourceName == "" {
		sourceName = SourceName(spec.InternalName)
	}
	return &CompiledClass{
		internalName:  spec.InternalName,
		sourceName:    sourceName,
		enclosing:     spec.Enclosing,
		local:         spec.Local,
		modifiers:     spec.Modifiers,
		payload:       spec.Payload,
		annotations:   spec.Annotations,
		members:       spec.MemberAnnotations,
		blobs:         spec.Blobs,
		signer:        spec.Signer,
		signatureHash: spec.SignatureHash,
	}
}

// InternalName returns the slash separated binary name.
func (c *CompiledClass) InternalName() string { return c.internalName }

// SourceName returns the dotted source name.
func (c *CompiledClass) SourceName() string { return c.sourceName }

// IsLocal reports whether the class is anonymous or method-local.
func (c *CompiledClass) IsLocal() bool { return c.local }

// Modifiers returns the access flags declared in source.
func (c *CompiledClass) Modifiers() AccessFlags { return c.modifiers }

// Payload returns the blob token of the class bytes.
func (c *CompiledClass) Payload() BlobToken { return c.payload }

// Annotations returns the source-level annotations of the type.
func (c *CompiledClass) Annotations() []Annotation { return c.annotations }

// MemberAnnotations returns the annotations of the field or method with key.
func (c *CompiledClass) MemberAnnotations(key string) []Annotation { return c.members[key] }

// MethodAnnotations returns the annotations of a method. When no key matches exactly it
// falls back to the only overload of the same arity, since source and bytecode disagree
// on erased type variables.
func (c *CompiledClass) MethodAnnotations(name string, paramTypes []string) []Annotation {
	if as, ok := c.members[MethodKey(name, paramTypes)]; ok {
		return as
	}
	prefix := name + "("
	var found []Annotation
	matches := 0
	for k, as := range c.members {
		if strings.HasPrefix(k, prefix) && methodArity(k) == len(paramTypes) {
			found = as
			matches++
		}
	}
	if matches == 1 {
		return found
	}
	return nil
}

func methodArity(key string) int {
	params := key[strings.IndexByte(key, '(')+1 : len(key)-1]
	if params == "" {
		return 0
	}
	return strings.Count(params, ",") + 1
}

// AllMemberAnnotations returns every member annotation keyed by FieldKey or MethodKey.
func (c *CompiledClass) AllMemberAnnotations() map[string][]Annotation { return c.members }

// EnclosingIndex returns the arena index of the enclosing class, or NoEnclosing.
func (c *CompiledClass) EnclosingIndex() int { return c.enclosing }

// BlobReader returns the store the payload is read from.
func (c *CompiledClass) BlobReader() PayloadReader { return c.blobs }

// Unit returns the owning unit, or nil before initUnit.
func (c *CompiledClass) Unit() *CompilationUnit { return c.unit }

// Enclosing returns the enclosing class through the owning unit's arena.
func (c *CompiledClass) Enclosing() *CompiledClass {
	if c.enclosing == NoEnclosing || c.unit == nil {
		return nil
	}
	classes := c.unit.classes
	if c.enclosing < 0 || c.enclosing >= len(classes) {
		return nil
	}
	return classes[c.enclosing]
}

// Bytes reads the class payload.
func (c *CompiledClass) Bytes() ([]byte, error) {
	if c.blobs == nil {
		return nil, zerr.With(ErrBlobNotFound, "class", c.internalName)
	}
	return c.blobs.Read(c.payload)
}

// IsChecked reports whether the owning unit has been checked and the signature frozen.
func (c *CompiledClass) IsChecked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked
}

// SignatureHash returns the structural signature, computing it on first use. Once the
// class is checked the value no longer changes.
func (c *CompiledClass) SignatureHash() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.signatureHash != "" {
		return c.signatureHash, nil
	}
	if c.signer == nil {
		return "", InternalError(zerr.With(ErrClassReadFailed, "class", c.internalName), "no signature function")
	}
	if c.blobs == nil {
		return "", zerr.With(ErrBlobNotFound, "class", c.internalName)
	}
	payload, err := c.blobs.Read(c.payload)
	if err != nil {
		return "", err
	}
	sig, err := c.signer(payload)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, ErrClassReadFailed.Error()), "class", c.internalName)
	}
	c.signatureHash = sig
	return sig, nil
}

// initUnit records the owning unit. It may be called once.
func (c *CompiledClass) initUnit(u *CompilationUnit) error {
	if c.unit != nil && c.unit != u {
		return zerr.With(ErrClassAlreadyOwned, "class", c.internalName)
	}
	c.unit = u
	return nil
}

// check freezes the class. The signature is computed now so that later payload
// eviction cannot change it.
func (c *CompiledClass) check() {
	_, _ = c.SignatureHash()
	c.mu.Lock()
	c.checked = true
	c.mu.Unlock()
}

// invalidate drops derived state. The payload token stays valid.
func (c *CompiledClass) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = false
}
