// Package ingest turns one decoded PopShops response into
// [resource.Store] contents.
//
// A response has two top-level sections: results (the entities matching
// the query) and resources (the entities they refer to). Every sub-section
// is optional. The walk order is fixed:
//
//  1. results.products.product, with each product's nested offers.offer
//     internalized as offers and linked to the product
//  2. results.merchants.merchant, results.deals.deal
//  3. resources.merchants.merchant, resources.brands.brand
//  4. resources.categories.matches.category, then
//     resources.categories.context.category
//  5. resources.deal_types.deal_type, resources.countries.country,
//     resources.merchant_types.merchant_type
//
// Later entities overwrite earlier ones with the same id, so a merchant in
// resources replaces the same merchant from results.
//
// Ingest must run to completion before relations are resolved: relation
// results are cached on first access.
package ingest
