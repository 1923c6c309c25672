package popshops

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// buildURL renders {base}/{kind}.json?{query}. Encode sorts the keys.
func buildURL(base string, kind CallKind, query url.Values) string {
	return base + "/" + string(kind) + ".json?" + query.Encode()
}

// mergeParams layers URL-mode parameters, then explicit params. The result
// holds only caller parameters; credentials are added by query.
func (c *Call) mergeParams(params url.Values) (url.Values, error) {
	merged := url.Values{}
	if c.opts.URLMode {
		for k, v := range FromRequest(c.opts.Request.URL.Query(), c.opts.URLPrefix) {
			merged[k] = v
		}
	}
	for k, v := range params {
		merged[k] = append([]string(nil), v...)
	}
	for k := range merged {
		if err := errors.ValidateParamName(k); err != nil {
			return nil, err
		}
		if isCredential(k) {
			delete(merged, k)
		}
	}
	return merged, nil
}

// query returns the caller parameters plus credentials. Credentials always
// win over caller parameters of the same name.
func (c *Call) query() url.Values {
	q := url.Values{}
	for k, v := range c.params {
		q[k] = v
	}
	q.Set("account", c.creds.Account)
	q.Set("catalog", c.creds.Catalog)
	return q
}

func isCredential(name string) bool {
	return name == "account" || name == "catalog"
}

// FromRequest extracts the parameters of query whose names start with
// prefix and strips the prefix.
func FromRequest(query url.Values, prefix string) url.Values {
	out := url.Values{}
	for k, v := range query {
		if name, ok := strings.CutPrefix(k, prefix); ok && name != "" {
			out[name] = append([]string(nil), v...)
		}
	}
	return out
}

// Params returns a copy of the caller parameters sent with the request,
// without credentials.
func (c *Call) Params() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneValues(c.params)
}

// Page returns the requested page number (1 when unset or invalid).
func (c *Call) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return pageOf(c.params)
}

// NextPage returns the parameters of the following page.
func (c *Call) NextPage() url.Values { return c.withPage(1) }

// PrevPage returns the parameters of the preceding page. The page number
// never drops below 1.
func (c *Call) PrevPage() url.Values { return c.withPage(-1) }

// NextPageURL renders a URL-mode link to the following page: base with
// every parameter prefixed by the URL prefix.
func (c *Call) NextPageURL(base string) string { return c.pageURL(base, c.NextPage()) }

// PrevPageURL renders a URL-mode link to the preceding page.
func (c *Call) PrevPageURL(base string) string { return c.pageURL(base, c.PrevPage()) }

func (c *Call) withPage(delta int) url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := cloneValues(c.params)
	p.Set("page", strconv.Itoa(max(1, pageOf(c.params)+delta)))
	return p
}

func (c *Call) pageURL(base string, params url.Values) string {
	prefixed := url.Values{}
	for k, v := range params {
		prefixed[c.opts.URLPrefix+k] = v
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + prefixed.Encode()
}

func pageOf(params url.Values) int {
	n, err := strconv.Atoi(params.Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
