package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/popgraph/pkg/buildinfo"
	"github.com/matzehuels/popgraph/pkg/cache"
	"github.com/matzehuels/popgraph/pkg/config"
	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/integrations/popshops"
	"github.com/matzehuels/popgraph/pkg/resource"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "popgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg   config.Config
	flags globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	account    string
	catalog    string
	baseURL    string
	noCache    bool
	refresh    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "popgraph maps PopShops API responses to an object graph",
		Long: `popgraph calls the PopShops v3 product, merchant and deal endpoints and
turns each response into a graph of linked resources: products with their
offers, merchants, deals, categories, brands, deal types, countries and
merchant types.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/popgraph/config.toml)")
	pf.StringVar(&c.flags.account, "account", "", "PopShops account key")
	pf.StringVar(&c.flags.catalog, "catalog", "", "PopShops catalog key")
	pf.StringVar(&c.flags.baseURL, "base-url", "", "API base URL")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the response cache")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "bypass cached responses")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.getCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file, layers flags on top and sets the log level.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	c.applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	switch {
	case c.flags.verbose:
		c.SetLogLevel(LogDebug)
	case cfg.Log.Level != "":
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log level")
		}
		c.SetLogLevel(level)
	}
	c.Logger.Debug("configuration loaded", "cache", cfg.Cache.Backend, "base_url", cfg.API.BaseURL)
	return nil
}

func (c *CLI) applyFlags(cfg *config.Config) {
	if c.flags.account != "" {
		cfg.API.Account = c.flags.account
	}
	if c.flags.catalog != "" {
		cfg.API.Catalog = c.flags.catalog
	}
	if c.flags.baseURL != "" {
		cfg.API.BaseURL = c.flags.baseURL
	}
	if c.flags.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
}

// =============================================================================
// Call Factory
// =============================================================================

// callOptions adjusts the options of one call, e.g. to enable url mode.
type callOptions func(*popshops.Options)

// newCall builds an unused call from the loaded configuration. The returned
// cleanup closes the cache backend.
func (c *CLI) newCall(ctx context.Context, extra ...callOptions) (*popshops.Call, func(), error) {
	backend, keyer, err := c.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = backend.Close() }

	call, err := c.callWith(backend, keyer, extra...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return call, cleanup, nil
}

// callWith builds an unused call on an already open cache backend. The
// caller owns the backend.
func (c *CLI) callWith(backend cache.Cache, keyer cache.Keyer, extra ...callOptions) (*popshops.Call, error) {
	opts := popshops.Options{
		BaseURL:  c.cfg.API.BaseURL,
		Logger:   c.Logger,
		Cache:    backend,
		Keyer:    keyer,
		CacheTTL: c.cfg.Cache.TTL.Duration,
		Refresh:  c.flags.refresh,
	}
	for _, fn := range extra {
		fn(&opts)
	}

	return popshops.New(popshops.Credentials{
		Account: c.cfg.API.Account,
		Catalog: c.cfg.API.Catalog,
	}, opts)
}

// withRequest puts a call in url mode for r.
func withRequest(r *http.Request) callOptions {
	return func(o *popshops.Options) {
		o.URLMode = true
		o.Request = r
	}
}

// openCache returns the configured response cache. Redis keys are scoped
// per account so several accounts can share one database.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	switch c.cfg.Cache.Backend {
	case config.CacheFile:
		fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, nil, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:   c.cfg.Cache.RedisAddr,
			DB:     c.cfg.Cache.RedisDB,
			Prefix: appName + ":",
		})
		if err != nil {
			return nil, nil, err
		}
		keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "account:"+c.cfg.API.Account+":")
		return rc, keyer, nil
	default:
		return cache.NewNullCache(), nil, nil
	}
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseParams converts repeated key=value flags into query parameters.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "parameter %q must be key=value", p)
		}
		if err := errors.ValidateParamName(k); err != nil {
			return nil, err
		}
		params.Add(k, v)
	}
	return params, nil
}

// queryFlags are the flags shared by every command that runs a call.
type queryFlags struct {
	params []string
	sortBy string
	asc    bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&q.params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&q.sortBy, "sort", resource.SortRelevance, "attribute to sort by")
	cmd.Flags().BoolVar(&q.asc, "asc", false, "sort ascending")
}

// run parses kind, performs the call and returns it.
func (c *CLI) run(ctx context.Context, kind string, q *queryFlags) (*popshops.Call, error) {
	callKind, err := popshops.ParseCallKind(kind)
	if err != nil {
		return nil, err
	}
	params, err := parseParams(q.params)
	if err != nil {
		return nil, err
	}
	call, cleanup, err := c.newCall(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Calling %s...", callKind))
	spinner.Start()
	err = call.Get(ctx, callKind, params)
	if err != nil && call.Stats().Total() == 0 {
		spinner.StopWithError(fmt.Sprintf("%s call failed", callKind))
		return nil, err
	}
	spinner.Stop()
	if err != nil {
		printWarning("%s", errors.UserMessage(err))
	}
	prog.done(fmt.Sprintf("Fetched %d entities from %s", call.Stats().Total(), callKind))
	return call, nil
}

// primaryKind is the entity kind a call of kind returns as results.
func primaryKind(kind popshops.CallKind) resource.Kind {
	switch kind {
	case popshops.CallMerchants:
		return resource.KindMerchant
	case popshops.CallDeals:
		return resource.KindDeal
	default:
		return resource.KindProduct
	}
}
