package popshops

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/popgraph/pkg/buildinfo"
	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/ingest"
	"github.com/matzehuels/popgraph/pkg/integrations"
	"github.com/matzehuels/popgraph/pkg/resource"
)

// Call is a one-shot PopShops API call and the resource graph built from
// its response. Create it with [New], run it once with [Call.Get], then
// query the graph.
//
// A Call is safe for concurrent reads after Get returns.
type Call struct {
	id     string
	creds  Credentials
	opts   Options
	logger *log.Logger
	client *integrations.Client
	store  *resource.Store

	mu     sync.Mutex
	called bool
	kind   CallKind
	params url.Values
	url    string
	cached bool
	stats  ingest.Stats
}

// New validates the credentials and options and returns an unused Call.
func New(creds Credentials, opts Options) (*Call, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	client := integrations.NewClient(opts.Cache, "popshops", opts.CacheTTL, map[string]string{
		"Accept":     "application/json",
		"User-Agent": buildinfo.UserAgent(),
	})
	client.SetHTTPClient(opts.HTTPClient)
	client.SetKeyer(opts.Keyer)

	return &Call{
		id:     id,
		creds:  creds,
		opts:   opts,
		logger: opts.Logger.With("call", id[:8]),
		client: client,
		store:  resource.NewStore(),
		params: url.Values{},
	}, nil
}

// Get calls the endpoint for kind with params and ingests the response.
//
// A Call may run only once: later calls fail with DUPLICATE_CALL and leave
// the graph untouched. Every failure is also logged at error level.
// Transport, status and decoding failures leave the graph empty. Malformed
// items inside an otherwise valid payload are reported as INVALID_PAYLOAD
// after the rest of the graph has been populated.
func (c *Call) Get(ctx context.Context, kind CallKind, params url.Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("setting up call", "kind", kind)
	if c.called {
		return c.fail(errors.New(errors.ErrCodeDuplicateCall, "call already performed; create a new call"))
	}
	if !kind.Valid() {
		return c.fail(errors.New(errors.ErrCodeInvalidCallKind, "invalid call kind %q (want products, merchants or deals)", kind))
	}

	merged, err := c.mergeParams(params)
	if err != nil {
		return c.fail(err)
	}
	c.called = true
	c.kind = kind
	c.params = merged
	c.url = buildURL(c.opts.BaseURL, kind, c.query())
	c.logger.Debug("request", "url", c.url)

	start := time.Now()
	doc, cached, err := c.fetch(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.cached = cached
	c.logger.Info("response received", "cached", cached, "duration", time.Since(start))

	stats, err := ingest.New(c.logger).Ingest(ctx, c.store, doc, kind)
	c.stats = stats
	c.logger.Info("ingested", "entities", stats.Total(), "skipped", stats.Skipped)
	if err != nil {
		return c.fail(err)
	}
	return nil
}

// fetch returns the decoded document, from the cache when possible. Only
// payloads reporting status 200 are cached.
func (c *Call) fetch(ctx context.Context) (map[string]any, bool, error) {
	var doc map[string]any
	key := string(c.kind) + "?" + c.query().Encode()

	data, hit, err := c.client.CachedRaw(ctx, key, c.opts.Refresh, func() ([]byte, error) {
		raw, err := c.client.GetRaw(ctx, c.url)
		if err != nil {
			return nil, transportError(err, c.kind)
		}
		if doc, err = decode(raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, false, err
	}
	if hit {
		if doc, err = decode(data); err != nil {
			return nil, true, err
		}
	}
	return doc, hit, nil
}

func decode(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := integrations.DecodeBytes(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode response")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidPayload, "response is not a JSON object")
	}
	return doc, checkPayloadStatus(doc)
}

// checkPayloadStatus enforces the status field the API embeds in every
// response body.
func checkPayloadStatus(doc map[string]any) error {
	status, ok := doc["status"]
	if !ok {
		return errors.New(errors.ErrCodeUpstreamStatus, "response has no status")
	}
	if s := resource.Normalize(status); s != "200" {
		msg := resource.Normalize(doc["message"])
		return errors.New(errors.ErrCodeUpstreamStatus, "API reported status %s: %s", s, msg)
	}
	return nil
}

func transportError(err error, kind CallKind) error {
	switch {
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "%s endpoint not found", kind)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "call %s", kind)
	}
}

func (c *Call) fail(err error) error {
	c.logger.Error("call failed", "err", err)
	return err
}

// ID returns the unique id of this call.
func (c *Call) ID() string { return c.id }

// Kind returns the endpoint called, or "" before Get.
func (c *Call) Kind() CallKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

// URL returns the request URL, or "" before Get.
func (c *Call) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

// Stats returns the ingestion statistics of the completed call.
func (c *Call) Stats() ingest.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Cached reports whether the response was served from the cache.
func (c *Call) Cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

// Store returns the resource graph. It is empty until Get succeeds.
func (c *Call) Store() *resource.Store { return c.store }

// Resource returns every entity of kind in ingestion order.
func (c *Call) Resource(kind resource.Kind) []resource.Resource {
	return c.store.Collection(kind)
}

// ResourceByID returns one entity, or a [*resource.Dummy] if it is missing.
func (c *Call) ResourceByID(kind resource.Kind, id any) resource.Resource {
	return c.store.ByID(kind, id)
}

// Sorted returns the entities of kind ordered by an attribute.
// See [resource.Store.Sorted].
func (c *Call) Sorted(kind resource.Kind, by string, descending bool) []resource.Resource {
	return c.store.Sorted(kind, by, descending)
}

func (c *Call) String() string {
	return fmt.Sprintf("popshops call %s (%s)", c.id, c.kind)
}
