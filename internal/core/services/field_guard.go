package services

// fieldGuard hands out per-field generation tokens. A result may be applied
// only while the token it was issued with is still the field's latest one.
type fieldGuard struct {
	gens  map[string]uint64
	edits map[string]uint64
}

func newFieldGuard() *fieldGuard {
	return &fieldGuard{
		gens:  make(map[string]uint64),
		edits: make(map[string]uint64),
	}
}

// issue starts a new request generation for field, invalidating older ones.
func (g *fieldGuard) issue(field string) uint64 {
	g.gens[field]++
	return g.gens[field]
}

func (g *fieldGuard) current(field string, token uint64) bool {
	return g.gens[field] == token
}

func (g *fieldGuard) invalidate(fields ...string) {
	for _, f := range fields {
		g.gens[f]++
	}
}

func (g *fieldGuard) invalidateAll() {
	for f := range g.gens {
		g.gens[f]++
	}
}

// touch records a user edit of field.
func (g *fieldGuard) touch(field string) {
	g.edits[field]++
}

// editMark returns the edit counter of field, used to detect user overrides
// between issuing a request and applying its result.
func (g *fieldGuard) editMark(field string) uint64 {
	return g.edits[field]
}

func (g *fieldGuard) untouchedSince(field string, mark uint64) bool {
	return g.edits[field] == mark
}
