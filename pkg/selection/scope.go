package selection

import "slices"

// scopeKind discriminates the three scope states.
type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeNone
	scopeNames
)

// Scope expresses which entities a config section asks for. It is a
// tri-state: everything, nothing, or an explicit name set. The three states
// replace the "nil means all, empty means none" convention of list-typed
// configuration fields with something the type system can check.
type Scope struct {
	kind  scopeKind
	names []string
}

// ScopeAll selects every entity.
func ScopeAll() Scope { return Scope{kind: scopeAll} }

// ScopeNone selects no entity.
func ScopeNone() Scope { return Scope{kind: scopeNone} }

// ScopeNames selects exactly the given names. An empty list is equivalent
// to ScopeNone.
func ScopeNames(names ...string) Scope {
	if len(names) == 0 {
		return ScopeNone()
	}
	return Scope{kind: scopeNames, names: slices.Clone(names)}
}

// ScopeFromList maps a decoded TOML list to a Scope: an absent field (nil
// slice) means everything, an empty list means nothing, a populated list
// means exactly those names.
func ScopeFromList(names []string) Scope {
	if names == nil {
		return ScopeAll()
	}
	return ScopeNames(names...)
}

// IsAll reports whether the scope selects everything.
func (s Scope) IsAll() bool { return s.kind == scopeAll }

// IsNone reports whether the scope selects nothing.
func (s Scope) IsNone() bool { return s.kind == scopeNone }

// Names returns the explicit name list, or nil for the All and None states.
func (s Scope) Names() []string { return s.names }
