package checks

import (
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

// JavaScriptObject is the source name of the overlay type root.
const JavaScriptObject = "com.google.gwt.core.client.JavaScriptObject"

// TypeInfo is the shape of a type as far as the checkers need it.
type TypeInfo struct {
	// Package resolves simple names in Super and Interfaces.
	Package    string
	Super      string
	Interfaces []string
	Interface  bool
	Final      bool
	// Methods holds the names of the declared methods.
	Methods []string
}

// Hierarchy looks up types that are not declared in the current batch.
type Hierarchy interface {
	Lookup(sourceName string) (TypeInfo, bool)
}

// State is shared by the checkers of one batch. It knows every type declared in the
// batch and records which overlay type implements which interface.
type State struct {
	hierarchy Hierarchy
	declared  map[string]TypeInfo
	jsoImpls  map[string]string
}

// NewState returns a State backed by h. h may be nil.
func NewState(h Hierarchy) *State {
	return &State{
		hierarchy: h,
		declared:  make(map[string]TypeInfo),
		jsoImpls:  make(map[string]string),
	}
}

// Declare registers the named types of decl so later lookups see them.
func (s *State) Declare(decl *domain.Declaration) {
	decl.Walk(func(t *domain.TypeDecl) bool {
		if t.Local || t.InternalName == "" {
			return false
		}
		info := TypeInfo{
			Package:    decl.Package,
			Super:      t.Super,
			Interfaces: t.Interfaces,
			Interface:  t.Kind == domain.KindInterface || t.Kind == domain.KindAnnotation,
			Final:      t.Modifiers.Has(domain.AccFinal),
		}
		for _, m := range t.Methods {
			if !m.Constructor {
				info.Methods = append(info.Methods, m.Name)
			}
		}
		s.declared[t.SourceName()] = info
		return true
	})
}

// Lookup returns the type named by a dotted source name.
func (s *State) Lookup(sourceName string) (TypeInfo, bool) {
	if info, ok := s.declared[sourceName]; ok {
		return info, true
	}
	if s.hierarchy != nil {
		return s.hierarchy.Lookup(sourceName)
	}
	return TypeInfo{}, false
}

// Known reports whether a type name resolves. Binary names are accepted.
func (s *State) Known(name string) bool {
	_, ok := s.Lookup(strings.ReplaceAll(name, "$", "."))
	return ok
}

// Resolve qualifies a type name as written in package pkg: the name itself, then
// pkg.name, then java.lang.name. An unknown name is returned unchanged.
func (s *State) Resolve(pkg, name string) string {
	if name == "" {
		return ""
	}
	candidates := make([]string, 0, 3)
	if domain.IsQualified(name) {
		candidates = append(candidates, name)
	}
	if pkg != "" {
		candidates = append(candidates, pkg+"."+name)
	} else if !domain.IsQualified(name) {
		candidates = append(candidates, name)
	}
	candidates = append(candidates, "java.lang."+name)
	for _, c := range candidates {
		if _, ok := s.Lookup(c); ok {
			return c
		}
	}
	return name
}

// IsJso reports whether name is JavaScriptObject or one of its subclasses.
func (s *State) IsJso(name string) bool {
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		if name == JavaScriptObject {
			return true
		}
		seen[name] = true
		info, ok := s.Lookup(name)
		if !ok {
			return false
		}
		name = s.Resolve(info.Package, info.Super)
	}
	return false
}

// JsoImplementor returns the overlay type implementing interface intf.
func (s *State) JsoImplementor(intf string) (string, bool) {
	impl, ok := s.jsoImpls[intf]
	return impl, ok
}

// claimInterface records impl as the overlay type implementing intf. It returns the
// previous implementor when another type already holds the interface.
func (s *State) claimInterface(intf, impl string) (string, bool) {
	if prev, ok := s.jsoImpls[intf]; ok && prev != impl {
		return prev, false
	}
	s.jsoImpls[intf] = impl
	return "", true
}
