package resource

import (
	"strings"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// Kind names one entity collection. Values are the plural names the
// PopShops API uses for its sections.
type Kind string

const (
	KindProduct      Kind = "products"
	KindOffer        Kind = "offers"
	KindMerchant     Kind = "merchants"
	KindDeal         Kind = "deals"
	KindCategory     Kind = "categories"
	KindBrand        Kind = "brands"
	KindDealType     Kind = "deal_types"
	KindCountry      Kind = "countries"
	KindMerchantType Kind = "merchant_types"
)

// Kinds lists every entity kind in a fixed, documentation-friendly order.
var Kinds = []Kind{
	KindProduct,
	KindOffer,
	KindMerchant,
	KindDeal,
	KindCategory,
	KindBrand,
	KindDealType,
	KindCountry,
	KindMerchantType,
}

var singular = map[Kind]string{
	KindProduct:      "product",
	KindOffer:        "offer",
	KindMerchant:     "merchant",
	KindDeal:         "deal",
	KindCategory:     "category",
	KindBrand:        "brand",
	KindDealType:     "deal_type",
	KindCountry:      "country",
	KindMerchantType: "merchant_type",
}

// Singular returns the singular spelling of k ("categories" -> "category").
// The API uses it for the item key inside every section.
func (k Kind) Singular() string {
	if s, ok := singular[k]; ok {
		return s
	}
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := singular[k]
	return ok
}

func (k Kind) String() string { return string(k) }

// ParseKind converts a user-supplied name to a Kind. Plural and singular
// spellings are both accepted, case-insensitively, and hyphens may stand in
// for underscores ("deal-type" -> KindDealType).
func ParseKind(name string) (Kind, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for k, s := range singular {
		if n == string(k) || n == s {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown resource kind %q", name)
}
