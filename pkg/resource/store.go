package resource

import (
	"maps"
	"slices"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// Store owns one id-keyed collection per kind and mediates every
// cross-entity lookup. Entities never reference sibling collections
// directly; they ask the store.
//
// A Store is populated once by ingestion and read afterwards. Writes are not
// synchronized; reads of a fully populated store are safe from several
// goroutines.
type Store struct {
	collections map[Kind]*collection
}

type collection struct {
	byID  map[string]Resource
	order []string
}

// NewStore returns an empty store with a collection for every kind.
func NewStore() *Store {
	s := &Store{collections: make(map[Kind]*collection, len(Kinds))}
	for _, k := range Kinds {
		s.collections[k] = &collection{byID: make(map[string]Resource)}
	}
	return s
}

// Internalize builds one entity of kind from raw, copies its scalar fields
// into the attribute bag and inserts it keyed by its id. An entity with an
// id already present replaces the earlier one (last write wins, no merge);
// the replacement keeps the original position in [Store.Collection].
//
// Non-scalar values are dropped. A missing id is not an error: the entity
// is stored under the empty id and Attr("id") reports it later.
func (s *Store) Internalize(kind Kind, raw map[string]any) (Resource, error) {
	c, ok := s.collections[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidKind, "cannot internalize unknown kind %q", kind)
	}
	r := s.newEntity(kind)
	attrs := r.Attributes()
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if v := raw[name]; IsScalar(v) {
			attrs.Set(name, v)
		}
	}
	id := r.ID()
	if _, exists := c.byID[id]; !exists {
		c.order = append(c.order, id)
	}
	c.byID[id] = r
	return r, nil
}

func (s *Store) newEntity(kind Kind) Resource {
	switch kind {
	case KindProduct:
		return newProduct(s)
	case KindOffer:
		return newOffer(s)
	case KindMerchant:
		return newMerchant(s)
	case KindDeal:
		return newDeal(s)
	case KindCategory:
		return newCategory(s)
	case KindBrand:
		return newBrand(s)
	case KindDealType:
		return newDealType(s)
	case KindCountry:
		return newCountry(s)
	case KindMerchantType:
		return newMerchantType(s)
	}
	panic("resource: no constructor for kind " + string(kind))
}

// Link attaches an offer nested in a product payload to that product: the
// offer is appended to the product's offers and its product back-link is
// set. Only ingestion should call Link.
func (s *Store) Link(p *Product, o *Offer) {
	link(p, o)
}

// Collection returns every entity of kind in insertion order.
// Unknown kinds yield an empty slice.
func (s *Store) Collection(kind Kind) []Resource {
	c, ok := s.collections[kind]
	if !ok {
		return nil
	}
	out := make([]Resource, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ByID returns the entity of kind with the given id, or a [*Dummy] carrying
// a diagnostic message when there is none. ids are compared in their
// string-normalized form, so 10 and "10" find the same entity.
func (s *Store) ByID(kind Kind, id any) Resource {
	key := Normalize(id)
	if c, ok := s.collections[kind]; ok {
		if r, ok := c.byID[key]; ok {
			return r
		}
	}
	return newDummy(kind, key)
}

// Lookup is like [Store.ByID] but reports a missing entity as an
// ENTITY_NOT_FOUND error instead of a placeholder.
func (s *Store) Lookup(kind Kind, id any) (Resource, error) {
	r := s.ByID(kind, id)
	if d, ok := r.(*Dummy); ok {
		return nil, errors.New(errors.ErrCodeEntityNotFound, "%s", d.Message())
	}
	return r, nil
}

// Count returns the number of entities of kind.
func (s *Store) Count(kind Kind) int {
	if c, ok := s.collections[kind]; ok {
		return len(c.order)
	}
	return 0
}

// Counts returns the number of entities per kind, omitting empty kinds.
func (s *Store) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for k, c := range s.collections {
		if n := len(c.order); n > 0 {
			out[k] = n
		}
	}
	return out
}

// All returns the entities of kind as their concrete type, for example
// All[*resource.Product](s, resource.KindProduct).
func All[T Resource](s *Store, kind Kind) []T {
	return typed[T](s.Collection(kind))
}
