package compilation

import (
	"go.trai.ch/javelin/internal/core/domain"
	"go.trai.ch/javelin/internal/core/ports"
	"go.trai.ch/javelin/internal/engine/checks"
)

var _ checks.Hierarchy = (*classHierarchy)(nil)

// classHierarchy answers checker lookups for types that are not declared in the
// current batch by decoding the payloads of the valid classes.
type classHierarchy struct {
	valid  domain.ClassIndex
	reader ports.ClassReader
	logger ports.Logger
	seen   map[*domain.CompiledClass]checks.TypeInfo
}

func newClassHierarchy(valid domain.ClassIndex, reader ports.ClassReader, logger ports.Logger) *classHierarchy {
	return &classHierarchy{
		valid:  valid,
		reader: reader,
		logger: logger,
		seen:   make(map[*domain.CompiledClass]checks.TypeInfo),
	}
}

// Lookup implements checks.Hierarchy.
func (h *classHierarchy) Lookup(sourceName string) (checks.TypeInfo, bool) {
	cc := h.valid[sourceName]
	if cc == nil {
		return checks.TypeInfo{}, false
	}
	if info, ok := h.seen[cc]; ok {
		return info, true
	}

	info := checks.TypeInfo{Package: domain.PackageOf(cc.InternalName())}
	data, err := h.decode(cc)
	if err != nil {
		// The type exists even when its shape cannot be read.
		h.logger.Debug("cannot read class " + cc.InternalName() + " for restriction checks: " + err.Error())
		h.seen[cc] = info
		return info, true
	}

	if data.SuperName != "" {
		info.Super = domain.SourceName(data.SuperName)
	}
	for _, i := range data.Interfaces {
		info.Interfaces = append(info.Interfaces, domain.SourceName(i))
	}
	info.Interface = data.IsInterface()
	info.Final = data.Access.Has(domain.AccFinal)
	for _, m := range data.Methods {
		if m.Name == "<init>" || m.Name == "<clinit>" || m.Access.Has(domain.AccSynthetic) {
			continue
		}
		info.Methods = append(info.Methods, m.Name)
	}
	h.seen[cc] = info
	return info, true
}

func (h *classHierarchy) decode(cc *domain.CompiledClass) (*domain.ClassData, error) {
	payload, err := cc.Bytes()
	if err != nil {
		return nil, err
	}
	return h.reader.Read(payload)
}
