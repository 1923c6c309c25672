// Package resource implements the in-memory entity graph built from one
// PopShops API response.
//
// # Overview
//
// A PopShops response is a denormalized bundle: products, offers, merchants,
// deals, categories, brands, deal types, countries and merchant types arrive
// side by side and refer to each other through id-valued attributes. This
// package stores them in a [Store] with one id-keyed collection per [Kind],
// and derives relationships on demand.
//
//	s := resource.NewStore()
//	// ... ingest.Ingest(ctx, s, payload, ingest.CallProducts) ...
//	p := s.ByID(resource.KindProduct, 1).(*resource.Product)
//	fmt.Println(resource.Name(p.Category()))
//
// # Resources
//
// Every entity implements [Resource]: attribute lookup through [Attributes]
// and relation resolution through Resolve. Each kind also offers typed
// accessors ([Product.Offers], [Merchant.Deals], [Deal.DealTypes], ...).
//
// # Relations
//
// Relations are computed at most once per entity and cached for its
// lifetime; the same *[Related] value is returned on every later call.
// Resolve relations only after ingestion has finished, otherwise the cache
// keeps an incomplete answer.
//
// All id comparisons are string-normalized (see [Normalize]), because the
// API sends the same id as a number in one section and a string in another.
//
// # Missing References
//
// [Store.ByID] never fails. When an id is absent it returns a [*Dummy] whose
// attributes all read as a diagnostic message. Use [IsDummy] or
// [Store.Lookup] when "not found" must be told apart from data.
package resource
