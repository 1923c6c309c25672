// Package pkg provides the core libraries for popgraph, a client-side
// object-graph mapper for the PopShops v3 JSON API.
//
// # Overview
//
// One API call returns a denormalized bundle of products, offers, merchants,
// deals and the taxonomy records they point to. popgraph turns that bundle
// into a graph of linked resources. The pkg directory is organized as:
//
//  1. [resource] - Entity kinds, attribute bags, the graph store and relations
//  2. [ingest] - Walking a decoded response into a store
//  3. [integrations] - HTTP transport and the PopShops call orchestrator
//  4. [cache] - Optional raw response caching (file, Redis)
//  5. [render/nodelink] - DOT/SVG export of a resource graph
//  6. [config], [errors], [observability], [buildinfo] - Supporting packages
//
// # Architecture
//
// The data flow of one call:
//
//	popshops.Call.Get
//	         ↓
//	    [integrations] (GET + JSON decode, optional cache)
//	         ↓
//	    [ingest] (fixed section walk, nested offers linked)
//	         ↓
//	    [resource] Store (relations resolved on demand)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/popgraph/pkg/integrations/popshops"
//	    "github.com/matzehuels/popgraph/pkg/resource"
//	)
//
//	call, _ := popshops.New(popshops.Credentials{Account: "...", Catalog: "..."}, popshops.Options{})
//	if err := call.Get(context.Background(), popshops.CallProducts, url.Values{"keyword": {"lamp"}}); err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range resource.All[*resource.Product](call.Store(), resource.KindProduct) {
//	    fmt.Println(resource.Name(p), resource.Name(p.Category()), len(p.Offers()))
//	}
//
// # Errors
//
// Operations return coded errors from [errors]; use errors.Is with a code
// (e.g. errors.ErrCodeDuplicateCall) to branch on failure kinds.
package pkg
