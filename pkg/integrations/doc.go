// Package integrations provides the HTTP transport for API clients.
//
// # Overview
//
// The [Client] type wraps net/http with the behavior every API client in
// popgraph shares:
//   - default headers merged with per-request headers
//   - JSON decoding with json.Number, so numeric ids keep their exact text
//   - optional response caching through a [cache.Cache] backend
//   - status mapping to [ErrNotFound] and [ErrNetwork]
//   - request events reported to [observability.HTTP]
//
// Requests are sent exactly once. There is no retry and no timeout besides
// the HTTP client timeout.
//
// # Clients
//
//   - [popshops]: the PopShops product, merchant and deal API
//
// [popshops]: github.com/matzehuels/popgraph/pkg/integrations/popshops
// [cache.Cache]: github.com/matzehuels/popgraph/pkg/cache.Cache
// [observability.HTTP]: github.com/matzehuels/popgraph/pkg/observability.HTTP
package integrations
