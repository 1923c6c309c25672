package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/popgraph/pkg/cache"
	"github.com/matzehuels/popgraph/pkg/errors"
	"github.com/matzehuels/popgraph/pkg/integrations/popshops"
	"github.com/matzehuels/popgraph/pkg/resource"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command, a small HTTP front end that runs
// url-mode calls.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve url-mode calls over HTTP",
		Long: `Start an HTTP server that answers GET /{products|merchants|deals} by
running one PopShops call in url mode: every request parameter starting
with psapi_ is forwarded with the prefix stripped. The response lists the
returned entities with links to the previous and next page.`,
		Example: `  popgraph serve --addr :8080
  curl 'localhost:8080/products?psapi_keyword=lamp&psapi_page=2'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func (c *CLI) serve(ctx context.Context, addr string) error {
	backend, keyer, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.router(responseCache{backend: backend, keyer: keyer}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("server starting", "address", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		c.Logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// responseCache is the cache backend shared by every request of one server.
type responseCache struct {
	backend cache.Cache
	keyer   cache.Keyer
}

// router wires the url-mode endpoints.
func (c *CLI) router(rc responseCache) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK\n"))
	})
	r.Get("/{kind}", c.handleCall(rc))
	return r
}

// requestLogger attaches a request-scoped logger to the request context.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := c.Logger.With("request", middleware.GetReqID(r.Context()))
		l.Debug("request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), l)))
	})
}

// entitySummary is one returned entity in a call response.
type entitySummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Missing bool   `json:"missing,omitempty"`
}

// callResponse is the JSON body of GET /{kind}.
type callResponse struct {
	Kind    string                `json:"kind"`
	Page    int                   `json:"page"`
	Results []entitySummary       `json:"results"`
	Counts  map[resource.Kind]int `json:"counts"`
	Skipped int                   `json:"skipped,omitempty"`
	Cached  bool                  `json:"cached"`
	Warning string                `json:"warning,omitempty"`
	Links   map[string]string     `json:"links"`
}

type errorResponse struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func (c *CLI) handleCall(rc responseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := loggerFromContext(r.Context())

		kind, err := popshops.ParseCallKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, err)
			return
		}

		call, err := c.callWith(rc.backend, rc.keyer, withRequest(r))
		if err != nil {
			writeError(w, err)
			return
		}

		getErr := call.Get(r.Context(), kind, nil)
		if getErr != nil && call.Stats().Total() == 0 {
			writeError(w, getErr)
			return
		}

		resp := callResponse{
			Kind:    string(kind),
			Page:    call.Page(),
			Results: []entitySummary{},
			Counts:  call.Store().Counts(),
			Skipped: call.Stats().Skipped,
			Cached:  call.Cached(),
			Links:   map[string]string{"next": call.NextPageURL(r.URL.Path)},
		}
		if getErr != nil {
			resp.Warning = errors.UserMessage(getErr)
		}
		if call.Page() > 1 {
			resp.Links["prev"] = call.PrevPageURL(r.URL.Path)
		}
		for _, e := range call.Resource(primaryKind(kind)) {
			resp.Results = append(resp.Results, entitySummary{ID: e.ID(), Name: resource.Name(e), Missing: resource.IsDummy(e)})
		}
		logger.Info("call served", "kind", kind, "results", len(resp.Results), "cached", resp.Cached)
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidCallKind, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeUpstreamStatus, errors.ErrCodeInvalidPayload:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Code: code, Error: errors.UserMessage(err)})
}
