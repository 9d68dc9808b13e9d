package sdjwt

// Directive describes which positions of a claims tree are selectively
// disclosable. It mirrors the shape of the claims tree it will be applied
// to: an object directive marks hidden keys, an array directive marks
// hidden indices by position, and ForceAll short-circuits a whole subtree
// to "every leaf is disclosable" (spec §4.5).
type Directive struct {
	// ForceAll marks every leaf claim and array element under this node
	// (and, once set, all descendants) as disclosable. It takes priority
	// over Fields/Elements.
	ForceAll bool

	// Hidden marks this node itself as disclosable within its parent
	// object or array; only meaningful when Directive appears as an entry
	// of Fields or Elements, never at a tree's root.
	Hidden bool

	// Fields gives per-key sub-directives for an object node. A key
	// absent from Fields is treated as "not hidden, recurse with a zero
	// Directive".
	Fields map[string]Directive

	// Elements gives per-index sub-directives for an array node, aligned
	// positionally with the claims array. An index beyond len(Elements)
	// is treated as "not hidden, recurse with a zero Directive".
	Elements []Directive
}

// ForceAllDirective returns the directive that marks every leaf claim and
// array element as disclosable, the `force_all_disclosable` shortcut.
func ForceAllDirective() Directive {
	return Directive{ForceAll: true}
}

// fieldDirective returns the sub-directive for object key k, defaulting to
// a zero Directive (not hidden, no further markings) when k is absent or
// d has no Fields map. If d.ForceAll is set, every key inherits it.
func (d Directive) fieldDirective(k string) Directive {
	if d.ForceAll {
		return Directive{ForceAll: true}
	}
	if d.Fields == nil {
		return Directive{}
	}
	sub, ok := d.Fields[k]
	if !ok {
		return Directive{}
	}
	return sub
}

// fieldHidden reports whether key k is marked hidden at this level. Under
// ForceAll every key is hidden.
func (d Directive) fieldHidden(k string) bool {
	if d.ForceAll {
		return true
	}
	if d.Fields == nil {
		return false
	}
	return d.Fields[k].Hidden
}

// elementDirective returns the sub-directive for array index i, defaulting
// to a zero Directive when i is out of range.
func (d Directive) elementDirective(i int) Directive {
	if d.ForceAll {
		return Directive{ForceAll: true}
	}
	if i < 0 || i >= len(d.Elements) {
		return Directive{}
	}
	return d.Elements[i]
}

// elementHidden reports whether array index i is marked hidden.
func (d Directive) elementHidden(i int) bool {
	if d.ForceAll {
		return true
	}
	if i < 0 || i >= len(d.Elements) {
		return false
	}
	return d.Elements[i].Hidden
}

// HideField returns a copy of d with field k marked hidden, for building
// directives programmatically (the common case: `dir.HideField("email")`).
func (d Directive) HideField(k string) Directive {
	if d.Fields == nil {
		d.Fields = make(map[string]Directive)
	} else {
		clone := make(map[string]Directive, len(d.Fields))
		for k2, v2 := range d.Fields {
			clone[k2] = v2
		}
		d.Fields = clone
	}
	d.Fields[k] = Directive{Hidden: true}
	return d
}

// WithField returns a copy of d with field k given sub-directive sub
// (without marking k itself hidden), for mapping-shaped directives that
// only recurse without hiding the key.
func (d Directive) WithField(k string, sub Directive) Directive {
	if d.Fields == nil {
		d.Fields = make(map[string]Directive)
	} else {
		clone := make(map[string]Directive, len(d.Fields))
		for k2, v2 := range d.Fields {
			clone[k2] = v2
		}
		d.Fields = clone
	}
	d.Fields[k] = sub
	return d
}

// HideElements returns a directive marking array indices positionally per
// hidden, e.g. HideElements(true, false, true).
func HideElements(hidden ...bool) Directive {
	elems := make([]Directive, len(hidden))
	for i, h := range hidden {
		elems[i] = Directive{Hidden: h}
	}
	return Directive{Elements: elems}
}
