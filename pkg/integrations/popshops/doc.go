// Package popshops calls the PopShops v3 API and exposes the response as a
// resource graph.
//
// # Usage
//
//	call, err := popshops.New(popshops.Credentials{Account: acct, Catalog: cat}, popshops.Options{
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := call.Get(ctx, popshops.CallProducts, url.Values{"keyword": {"ipod"}}); err != nil {
//	    return err
//	}
//	for _, p := range resource.All[*resource.Product](call.Store(), resource.KindProduct) {
//	    fmt.Println(resource.Name(p), resource.Name(p.Category()))
//	}
//
// # One-Shot Calls
//
// A [Call] performs exactly one request. A second Get fails with
// DUPLICATE_CALL and leaves the graph as it was. Create a new Call for each
// request.
//
// # URL Mode
//
// With [Options.URLMode] set, query parameters of [Options.Request] whose
// names start with [Options.URLPrefix] ("psapi_" by default) are forwarded
// to the API with the prefix removed. [Call.NextPageURL] and
// [Call.PrevPageURL] render links back in the same form, which is how a
// page built on a Call paginates.
package popshops
