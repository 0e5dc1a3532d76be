package unitcache

import (
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/zerr"
)

// unitRecord is the persisted snapshot of one CHECKED unit. Each record is
// self-contained: class payloads travel inline and are moved back into the blob store
// on replay.
type unitRecord struct {
	TypeName        string                      `json:"typeName"`
	DisplayLocation string                      `json:"displayLocation"`
	ResourcePath    string                      `json:"resourcePath"`
	ContentID       domain.ContentID            `json:"contentId"`
	LastModified    int64                       `json:"lastModified"`
	Generated       bool                        `json:"generated,omitempty"`
	Dependencies    domain.DependenciesSnapshot `json:"dependencies"`
	Problems        []domain.Problem            `json:"problems,omitempty"`
	MethodArgs      domain.MethodArgNames       `json:"methodArgs,omitempty"`
	JsniMethods     []domain.JsniMethod         `json:"jsniMethods,omitempty"`
	FileRefs        []string                    `json:"fileRefs,omitempty"`
	Classes         []classRecord               `json:"classes"`
}

type classRecord struct {
	InternalName      string                         `json:"internalName"`
	SourceName        string                         `json:"sourceName,omitempty"`
	Enclosing         int                            `json:"enclosing"`
	Local             bool                           `json:"local,omitempty"`
	Modifiers         domain.AccessFlags             `json:"modifiers,omitempty"`
	Signature         string                         `json:"signature,omitempty"`
	Annotations       []domain.Annotation            `json:"annotations,omitempty"`
	MemberAnnotations map[string][]domain.Annotation `json:"memberAnnotations,omitempty"`
	Payload           []byte                         `json:"payload"`

	// token is where the payload lives until the writer reads it.
	token domain.BlobToken
	blobs domain.PayloadReader
}

// snapshot captures u. Payloads are only referenced; load reads them in.
// It must run on the goroutine that owns u, because validation rebinds dependency
// entries in place.
func snapshot(u *domain.CompilationUnit) *unitRecord {
	src := u.Source()
	rec := &unitRecord{
		TypeName:        src.TypeName,
		DisplayLocation: src.DisplayLocation,
		ResourcePath:    src.ResourcePath,
		ContentID:       src.ContentID,
		LastModified:    src.LastModified,
		Generated:       src.Generated,
		Problems:        u.Problems(),
		MethodArgs:      u.MethodArgs(),
		JsniMethods:     u.JsniMethods(),
		FileRefs:        u.FileRefs(),
	}
	if deps := u.Dependencies(); deps != nil {
		rec.Dependencies = deps.Snapshot()
	}
	for _, c := range u.Classes() {
		sig, _ := c.SignatureHash()
		rec.Classes = append(rec.Classes, classRecord{
			InternalName:      c.InternalName(),
			SourceName:        c.SourceName(),
			Enclosing:         c.EnclosingIndex(),
			Local:             c.IsLocal(),
			Modifiers:         c.Modifiers(),
			Signature:         sig,
			Annotations:       c.Annotations(),
			MemberAnnotations: c.AllMemberAnnotations(),
			token:             c.Payload(),
			blobs:             c.BlobReader(),
		})
	}
	return rec
}

// loadPayloads reads the class bytes referenced by the snapshot.
func (r *unitRecord) loadPayloads() error {
	for i := range r.Classes {
		c := &r.Classes[i]
		if c.Payload != nil {
			continue
		}
		if c.blobs == nil {
			return zerr.With(domain.ErrBlobNotFound, "class", c.InternalName)
		}
		data, err := c.blobs.Read(c.token)
		if err != nil {
			return zerr.With(err, "class", c.InternalName)
		}
		c.Payload = data
	}
	return nil
}

// restore rebuilds a CHECKED unit, storing the payloads in blobs.
func (r *unitRecord) restore(blobs ports.BlobStore, signer domain.SignatureFunc) (*domain.CompilationUnit, error) {
	classes := make([]*domain.CompiledClass, 0, len(r.Classes))
	for _, c := range r.Classes {
		tok, err := blobs.Put(c.Payload)
		if err != nil {
			return nil, zerr.With(err, "class", c.InternalName)
		}
		classes = append(classes, domain.NewCompiledClass(domain.ClassSpec{
			InternalName:      c.InternalName,
			SourceName:        c.SourceName,
			Enclosing:         c.Enclosing,
			Local:             c.Local,
			Modifiers:         c.Modifiers,
			Payload:           tok,
			Annotations:       c.Annotations,
			MemberAnnotations: c.MemberAnnotations,
			SignatureHash:     c.Signature,
			Blobs:             blobs,
			Signer:            signer,
		}))
	}

	src := domain.UnitSource{
		TypeName:        r.TypeName,
		DisplayLocation: r.DisplayLocation,
		ResourcePath:    r.ResourcePath,
		ContentID:       r.ContentID,
		LastModified:    r.LastModified,
		Generated:       r.Generated,
	}
	return domain.NewCheckedUnit(src, domain.ProvenancePersistent, domain.CheckedUnitParts{
		Classes:      classes,
		Dependencies: domain.RestoreDependencies(r.Dependencies),
		Problems:     r.Problems,
		JsniMethods:  r.JsniMethods,
		MethodArgs:   r.MethodArgs,
		FileRefs:     r.FileRefs,
	})
}
