package popshops

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/popgraph/pkg/cache"
	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/ingest"
)

const (
	// DefaultBaseURL is the PopShops v3 API root.
	DefaultBaseURL = "http://api.popshops.com/v3"

	// DefaultURLPrefix marks request parameters forwarded in URL mode.
	DefaultURLPrefix = "psapi_"

	// DefaultCacheTTL applies when a cache is configured without a TTL.
	DefaultCacheTTL = time.Hour
)

// CallKind selects the API endpoint.
type CallKind = ingest.CallKind

// Endpoints.
const (
	CallProducts  = ingest.CallProducts
	CallMerchants = ingest.CallMerchants
	CallDeals     = ingest.CallDeals
)

// ParseCallKind converts a user-supplied endpoint name to a CallKind.
func ParseCallKind(name string) (CallKind, error) {
	return ingest.ParseCallKind(name)
}

// Credentials identify the PopShops account and catalog. Both are sent
// with every request.
type Credentials struct {
	Account string
	Catalog string
}

// Validate checks both identifiers.
func (c Credentials) Validate() error {
	if err := errors.ValidateIdentifier("account", c.Account); err != nil {
		return err
	}
	return errors.ValidateIdentifier("catalog", c.Catalog)
}

// Options configures a [Call]. The zero value is usable.
type Options struct {
	// BaseURL overrides [DefaultBaseURL].
	BaseURL string

	// Logger receives progress (info/debug) and failures (error).
	// nil discards all output.
	Logger *log.Logger

	// Cache stores raw responses. nil disables caching.
	Cache cache.Cache
	// Keyer scopes cache keys. nil uses [cache.DefaultKeyer].
	Keyer    cache.Keyer
	CacheTTL time.Duration
	// Refresh bypasses cached responses but still stores fresh ones.
	Refresh bool

	// URLMode forwards every query parameter of Request whose name starts
	// with URLPrefix, with the prefix stripped.
	URLMode   bool
	URLPrefix string
	Request   *http.Request

	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
}

func (o *Options) setDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.URLPrefix == "" {
		o.URLPrefix = DefaultURLPrefix
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
}

func (o *Options) validate() error {
	if err := errors.ValidateURL(o.BaseURL); err != nil {
		return err
	}
	if o.URLMode && o.Request == nil {
		return errors.New(errors.ErrCodeInvalidInput, "url mode requires a request")
	}
	return nil
}
