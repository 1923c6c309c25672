package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/observability"
	"github.com/matzehuels/popgraph/pkg/resource"
)

// CallKind names the API endpoint that produced a payload.
type CallKind string

const (
	CallProducts  CallKind = "products"
	CallMerchants CallKind = "merchants"
	CallDeals     CallKind = "deals"
)

// CallKinds lists every endpoint a call can target.
var CallKinds = []CallKind{CallProducts, CallMerchants, CallDeals}

// Valid reports whether k is a known call kind.
func (k CallKind) Valid() bool {
	switch k {
	case CallProducts, CallMerchants, CallDeals:
		return true
	}
	return false
}

func (k CallKind) String() string { return string(k) }

// ParseCallKind converts a user-supplied endpoint name to a CallKind.
// Singular spellings are accepted.
func ParseCallKind(name string) (CallKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, k := range CallKinds {
		if n == string(k) || n+"s" == string(k) {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidCallKind, "invalid call kind %q (want products, merchants or deals)", name)
}

// section is one list of entities inside the response document.
type section struct {
	path []string
	kind resource.Kind
}

// sections is the fixed walk order after results.products. Categories come
// from two buckets that share one collection; context overwrites matches.
var sections = []section{
	{[]string{"results", "merchants", "merchant"}, resource.KindMerchant},
	{[]string{"results", "deals", "deal"}, resource.KindDeal},
	{[]string{"resources", "merchants", "merchant"}, resource.KindMerchant},
	{[]string{"resources", "brands", "brand"}, resource.KindBrand},
	{[]string{"resources", "categories", "matches", "category"}, resource.KindCategory},
	{[]string{"resources", "categories", "context", "category"}, resource.KindCategory},
	{[]string{"resources", "deal_types", "deal_type"}, resource.KindDealType},
	{[]string{"resources", "countries", "country"}, resource.KindCountry},
	{[]string{"resources", "merchant_types", "merchant_type"}, resource.KindMerchantType},
}

var productsPath = []string{"results", "products", "product"}

// Stats summarizes one ingestion pass.
type Stats struct {
	// Internalized counts internalize operations per kind, overwrites included.
	Internalized map[resource.Kind]int
	// Skipped counts items that were not objects.
	Skipped  int
	Duration time.Duration
}

// Total returns the number of internalize operations across all kinds.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Internalized {
		n += c
	}
	return n
}

// Ingester walks decoded response documents into a [resource.Store].
type Ingester struct {
	Logger *log.Logger
}

// New returns an Ingester. A nil logger discards output.
func New(logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Ingester{Logger: logger}
}

// Ingest populates store from doc using a discarding logger.
func Ingest(ctx context.Context, store *resource.Store, doc map[string]any, kind CallKind) (Stats, error) {
	return New(nil).Ingest(ctx, store, doc, kind)
}

// Ingest internalizes every known section of doc into store.
//
// Sections are optional. Items that are not objects are skipped and
// reported in the returned error (INVALID_PAYLOAD, joined per item); the
// remaining items are still ingested and nothing is rolled back. An
// invalid call kind is rejected before the store is touched.
func (in *Ingester) Ingest(ctx context.Context, store *resource.Store, doc map[string]any, kind CallKind) (Stats, error) {
	if !kind.Valid() {
		return Stats{}, errors.New(errors.ErrCodeInvalidCallKind, "invalid call kind %q", kind)
	}

	start := time.Now()
	observability.Ingest().OnIngestStart(ctx, string(kind))

	w := &walker{
		store:  store,
		logger: in.Logger,
		stats:  Stats{Internalized: make(map[resource.Kind]int)},
	}
	w.products(doc)
	for _, s := range sections {
		for _, raw := range w.items(doc, s.path) {
			w.internalize(s.kind, raw)
		}
	}

	w.stats.Duration = time.Since(start)
	err := stderrors.Join(w.errs...)
	observability.Ingest().OnIngestComplete(ctx, string(kind), w.stats.Total(), w.stats.Duration, err)

	in.Logger.Debug("ingested response",
		"call", kind,
		"entities", w.stats.Total(),
		"skipped", w.stats.Skipped,
		"duration", w.stats.Duration)
	return w.stats, err
}

type walker struct {
	store  *resource.Store
	logger *log.Logger
	stats  Stats
	errs   []error
}

// products handles the one nested case: offers inside a product payload
// are internalized on their own and linked back to the product.
func (w *walker) products(doc map[string]any) {
	for _, raw := range w.items(doc, productsPath) {
		r := w.internalize(resource.KindProduct, raw)
		p, ok := r.(*resource.Product)
		if !ok {
			continue
		}
		offerPath := []string{"offers", "offer"}
		for _, rawOffer := range w.items(raw, offerPath) {
			if o, ok := w.internalize(resource.KindOffer, rawOffer).(*resource.Offer); ok {
				w.store.Link(p, o)
			}
		}
	}
}

func (w *walker) internalize(kind resource.Kind, raw map[string]any) resource.Resource {
	r, err := w.store.Internalize(kind, raw)
	if err != nil {
		w.errs = append(w.errs, err)
		return nil
	}
	w.stats.Internalized[kind]++
	w.logger.Debug("internalized", "kind", kind, "id", r.ID())
	return r
}

// items returns the objects found at path below doc. A single object is a
// one-element list. A missing section yields nothing, and so does an empty
// list anywhere on the path (PHP encodes an empty object as []). Anything
// else that is not an object is recorded as a skipped item.
func (w *walker) items(doc map[string]any, path []string) []map[string]any {
	var cur any = doc
	for _, key := range path {
		if isEmptyList(cur) {
			return nil
		}
		m, ok := cur.(map[string]any)
		if !ok {
			w.skip(path, -1, cur)
			return nil
		}
		if cur, ok = m[key]; !ok || cur == nil {
			return nil
		}
	}

	var list []any
	switch v := cur.(type) {
	case []any:
		list = v
	case map[string]any:
		list = []any{v}
	default:
		w.skip(path, -1, v)
		return nil
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			w.skip(path, i, item)
			continue
		}
		out = append(out, m)
	}
	return out
}

func isEmptyList(v any) bool {
	l, ok := v.([]any)
	return ok && len(l) == 0
}

func (w *walker) skip(path []string, index int, v any) {
	where := strings.Join(path, ".")
	if index >= 0 {
		where = fmt.Sprintf("%s[%d]", where, index)
	}
	w.stats.Skipped++
	w.errs = append(w.errs, errors.New(errors.ErrCodeInvalidPayload, "%s: expected object, got %T", where, v))
	w.logger.Debug("skipped item", "at", where, "type", fmt.Sprintf("%T", v))
}
