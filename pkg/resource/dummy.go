package resource

import (
	"fmt"
	"sync"
)

// Dummy stands in for an entity that is referenced but absent from the
// response. The API is known to omit referenced entities from its
// resources section, so lookups never fail; they return a Dummy instead.
//
// Attr on a Dummy returns its diagnostic message (with a nil error) for any
// name, and Resolve returns another Dummy whose message names the parent.
// Use [IsDummy] to tell placeholders from real data.
type Dummy struct {
	kind    Kind
	id      string
	message string
	attrs   *Attributes

	mu   sync.Mutex
	memo map[string]*Related
}

func newDummy(kind Kind, id string) *Dummy {
	return &Dummy{
		kind:    kind,
		id:      id,
		message: fmt.Sprintf("[popgraph: no %s with id %q]", kind, id),
		attrs:   newAttributes(kind),
	}
}

// IsDummy reports whether r is a placeholder for a missing entity.
func IsDummy(r Resource) bool {
	_, ok := r.(*Dummy)
	return ok
}

// Kind returns the kind that was looked up.
func (d *Dummy) Kind() Kind { return d.kind }

// ID returns the id that was looked up. A placeholder returned by
// [Dummy.Resolve] carries the id of the placeholder it was resolved from.
func (d *Dummy) ID() string { return d.id }

// Message returns the diagnostic message.
func (d *Dummy) Message() string { return d.message }

// Attr returns the diagnostic message for every attribute name.
func (d *Dummy) Attr(string) (any, error) { return d.message, nil }

// Attributes returns an empty bag.
func (d *Dummy) Attributes() *Attributes { return d.attrs }

// Resolve returns a placeholder chained onto this one for any relation name.
// The placeholder's kind is the relation's target kind when the name spells
// one (offers, category, deal_types, ...) and its id is the id of this
// placeholder.
func (d *Dummy) Resolve(name string) (*Related, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.memo[name]; ok {
		return r, nil
	}
	if d.memo == nil {
		d.memo = make(map[string]*Related)
	}
	kind, _ := ParseKind(name)
	child := &Dummy{
		kind:    kind,
		id:      d.id,
		message: fmt.Sprintf("[popgraph: %s of missing object %s]", name, d.message),
		attrs:   newAttributes(kind),
	}
	r := newOne(name, child)
	d.memo[name] = r
	return r, nil
}

func (d *Dummy) String() string { return d.message }
