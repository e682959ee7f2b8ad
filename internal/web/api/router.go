// Package api serves entity metadata over HTTP.
//
//	GET /healthz
//	GET /entities
//	GET /entities/{name}
//	GET /entities/{name}/ddl?dialect=postgres|sqlite
//
// {name} is a short type name or a URL-escaped qualified class name. Entity
// responses carry an ETag and honor If-None-Match.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
	"github.com/conduit-lang/entitymeta/internal/web/middleware"
)

// Catalog lists and finds registered entity classes
type Catalog interface {
	Names() []string
	Find(name string) (*introspect.Class, error)
}

// Deps are the collaborators of the router
type Deps struct {
	Catalog Catalog
	Factory metadata.Factory
	Logger  *zap.Logger
	// Version is reported by /healthz
	Version string
	// Profiling mounts net/http/pprof under /debug
	Profiling bool
}

type handler struct {
	catalog Catalog
	factory metadata.Factory
	ddl     *codegen.DDLGenerator
	logger  *zap.Logger
	version string
}

// NewRouter builds the API router
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		catalog: deps.Catalog,
		factory: deps.Factory,
		ddl:     codegen.NewDDLGenerator(),
		logger:  logger,
		version: deps.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger, "/healthz"))
	r.Use(middleware.Recovery(logger))

	if deps.Profiling {
		r.Mount("/debug", chimw.Profiler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", h.health)
	r.Route("/entities", func(r chi.Router) {
		r.Use(middleware.ETag())
		r.Get("/", h.listEntities)
		r.Get("/{name}", h.getEntity)
		r.Get("/{name}/ddl", h.getDDL)
	})

	return r
}
