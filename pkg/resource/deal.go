package resource

import (
	"slices"
	"strings"
)

// Deal is a merchant promotion (coupon, sale, free shipping, ...).
// Its deal_type attribute is a comma-separated list of deal type ids.
type Deal struct {
	entity
}

func newDeal(store lookup) *Deal {
	d := &Deal{}
	d.init(KindDeal, store)
	return d
}

// Merchant returns the merchant publishing the deal, or a [*Dummy].
func (d *Deal) Merchant() Resource { return d.merchant().One() }

// DealTypes returns the deal's types in the order they are listed.
// Missing types appear as [*Dummy] values.
func (d *Deal) DealTypes() []Resource { return d.dealTypes().All() }

// DealTypeIDs returns the ids listed in the deal_type attribute.
func (d *Deal) DealTypeIDs() []string {
	v, _ := d.attrs.String("deal_type")
	return splitIDs(v)
}

func (d *Deal) merchant() *Related { return d.ref("merchant", KindMerchant, "merchant") }

func (d *Deal) dealTypes() *Related {
	return d.memoize("deal_types", func() *Related {
		ids := d.DealTypeIDs()
		out := make([]Resource, 0, len(ids))
		for _, id := range ids {
			out = append(out, d.store.ByID(KindDealType, id))
		}
		return newMany("deal_types", out)
	})
}

// Resolve implements [Resource].
func (d *Deal) Resolve(name string) (*Related, error) {
	switch name {
	case "merchant":
		return d.merchant(), nil
	case "deal_types":
		return d.dealTypes(), nil
	}
	return nil, d.unknown(name)
}

// DealType is a deal category such as "coupon" or "free shipping".
type DealType struct {
	entity
}

func newDealType(store lookup) *DealType {
	t := &DealType{}
	t.init(KindDealType, store)
	return t
}

// Deals returns every deal whose deal_type list contains this type.
func (t *DealType) Deals() []*Deal { return typed[*Deal](t.deals().All()) }

func (t *DealType) deals() *Related {
	return t.memoize("deals", func() *Related {
		id := t.ID()
		var out []Resource
		for _, r := range t.store.Collection(KindDeal) {
			v, _ := r.Attributes().String("deal_type")
			if slices.Contains(splitIDs(v), id) {
				out = append(out, r)
			}
		}
		return newMany("deals", out)
	})
}

// Resolve implements [Resource].
func (t *DealType) Resolve(name string) (*Related, error) {
	if name == "deals" {
		return t.deals(), nil
	}
	return nil, t.unknown(name)
}

// splitIDs parses a comma-separated id list, dropping blanks.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
