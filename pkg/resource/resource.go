package resource

import (
	"strings"
	"sync"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// Resource is one entity of the graph. The set of implementations is closed:
// one type per [Kind] plus [*Dummy] for missing references.
type Resource interface {
	Kind() Kind
	ID() string
	// Attr returns the raw attribute value, or an ATTRIBUTE_NOT_FOUND error.
	Attr(name string) (any, error)
	Attributes() *Attributes
	// Resolve returns the named relation. Unknown names yield an
	// UNKNOWN_RELATION error.
	Resolve(relation string) (*Related, error)
}

// Related is the value of a resolved relation: either a single resource
// (possibly a [*Dummy]) or an ordered list.
type Related struct {
	Name  string
	many  bool
	items []Resource
}

func newOne(name string, r Resource) *Related {
	return &Related{Name: name, items: []Resource{r}}
}

func newMany(name string, rs []Resource) *Related {
	if rs == nil {
		rs = []Resource{}
	}
	return &Related{Name: name, many: true, items: rs}
}

// Many reports whether the relation is a list.
func (r *Related) Many() bool { return r.many }

// One returns the single related resource, or the first element of a list.
// It returns nil for an empty list.
func (r *Related) One() Resource {
	if len(r.items) == 0 {
		return nil
	}
	return r.items[0]
}

// All returns the related resources. The slice is shared with the relation
// cache and must not be modified.
func (r *Related) All() []Resource { return r.items }

// Len returns the number of related resources.
func (r *Related) Len() int { return len(r.items) }

// lookup is the read capability entities hold into their owning [Store].
type lookup interface {
	ByID(kind Kind, id any) Resource
	Collection(kind Kind) []Resource
}

// entity carries the state shared by every concrete kind: its attribute
// bag, the store it was internalized into, and the relation cache.
type entity struct {
	kind  Kind
	attrs *Attributes
	store lookup

	mu   sync.Mutex
	memo map[string]*Related
}

func (e *entity) init(kind Kind, store lookup) {
	e.kind = kind
	e.attrs = newAttributes(kind)
	e.store = store
}

// Kind returns the entity kind.
func (e *entity) Kind() Kind { return e.kind }

// ID returns the string-normalized id attribute, or "" if it is missing.
func (e *entity) ID() string {
	id, _ := e.attrs.String("id")
	return id
}

// Attr returns the raw value of the named attribute.
func (e *entity) Attr(name string) (any, error) { return e.attrs.Get(name) }

// Attributes returns the entity's attribute bag.
func (e *entity) Attributes() *Attributes { return e.attrs }

// Name returns the name attribute, or "" if the entity has none.
func (e *entity) Name() string {
	name, _ := e.attrs.String("name")
	return name
}

// memoize returns the cached relation or computes and caches it. The
// cached pointer is returned on every later call for the entity's lifetime.
func (e *entity) memoize(name string, compute func() *Related) *Related {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.memo[name]; ok {
		return r
	}
	if e.memo == nil {
		e.memo = make(map[string]*Related)
	}
	r := compute()
	e.memo[name] = r
	return r
}

// ref resolves a to-one relation by looking up the value of attr in kind.
func (e *entity) ref(name string, kind Kind, attr string) *Related {
	return e.memoize(name, func() *Related {
		v, _ := e.attrs.String(attr)
		return newOne(name, e.store.ByID(kind, v))
	})
}

// scan resolves a to-many relation by collecting every entity of kind whose
// attr equals this entity's id.
func (e *entity) scan(name string, kind Kind, attr string) *Related {
	return e.memoize(name, func() *Related {
		id := e.ID()
		var out []Resource
		for _, r := range e.store.Collection(kind) {
			if v, ok := r.Attributes().String(attr); ok && v == id {
				out = append(out, r)
			}
		}
		return newMany(name, out)
	})
}

func (e *entity) unknown(name string) error {
	return errors.New(errors.ErrCodeUnknownRelation, "%s has no relation %q (known: %s)",
		e.kind.Singular(), name, strings.Join(Relations(e.kind), ", "))
}

var relations = map[Kind][]string{
	KindProduct:      {"offers", "category", "brand"},
	KindOffer:        {"product", "merchant"},
	KindMerchant:     {"offers", "deals", "country", "merchant_type", "category"},
	KindDeal:         {"merchant", "deal_types"},
	KindCategory:     {"products"},
	KindBrand:        {"products"},
	KindDealType:     {"deals"},
	KindCountry:      {"merchants"},
	KindMerchantType: {"merchants"},
}

// Relations returns the relation names a kind can resolve.
func Relations(k Kind) []string {
	return append([]string(nil), relations[k]...)
}

// Name returns a display name for r: its name attribute, its id, or the
// diagnostic message of a placeholder.
func Name(r Resource) string {
	if d, ok := r.(*Dummy); ok {
		return d.Message()
	}
	if n, ok := r.Attributes().String("name"); ok && n != "" {
		return n
	}
	return r.ID()
}

// typed filters rs down to the elements of concrete type T. Placeholders
// are dropped.
func typed[T Resource](rs []Resource) []T {
	out := make([]T, 0, len(rs))
	for _, r := range rs {
		if t, ok := r.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
