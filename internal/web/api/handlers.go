package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EntitySummary is one entry of the entity list
type EntitySummary struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Polymorphic bool   `json:"polymorphic"`
}

// DDLResponse carries the CREATE TABLE statement of an entity
type DDLResponse struct {
	Entity  string `json:"entity"`
	Table   string `json:"table"`
	Dialect string `json:"dialect"`
	DDL     string `json:"ddl"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  h.version,
		"entities": len(h.catalog.Names()),
	})
}

func (h *handler) listEntities(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	entities := make([]EntitySummary, 0, len(names))
	for _, name := range names {
		class, err := h.catalog.Find(name)
		if err != nil {
			h.logger.Warn("registered class not found", zap.String("entity", name), zap.Error(err))
			continue
		}
		entities = append(entities, EntitySummary{
			Name:        class.Name,
			ShortName:   class.ShortName(),
			Polymorphic: class.Discriminator != nil,
		})
	}
	renderJSON(w, http.StatusOK, map[string]any{"entities": entities})
}

func (h *handler) getEntity(w http.ResponseWriter, r *http.Request) {
	meta, ok := h.metadataFor(w, r)
	if !ok {
		return
	}
	renderJSON(w, http.StatusOK, meta)
}

func (h *handler) getDDL(w http.ResponseWriter, r *http.Request) {
	dialect, err := codegen.ParseDialect(r.URL.Query().Get("dialect"))
	if err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	meta, ok := h.metadataFor(w, r)
	if !ok {
		return
	}

	ddl, err := h.ddl.GenerateCreateTable(meta, dialect)
	if err != nil {
		renderError(w, http.StatusUnprocessableEntity, "unprocessable_entity", err.Error())
		return
	}

	renderJSON(w, http.StatusOK, DDLResponse{
		Entity:  meta.Entity(),
		Table:   h.ddl.TableName(meta),
		Dialect: string(dialect),
		DDL:     ddl,
	})
}

// metadataFor resolves {name} and builds its metadata, rendering the error
// response itself when that fails
func (h *handler) metadataFor(w http.ResponseWriter, r *http.Request) (*metadata.EntityMetadata, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		renderError(w, http.StatusBadRequest, "bad_request", "invalid entity name")
		return nil, false
	}

	class, err := h.catalog.Find(name)
	switch {
	case errors.Is(err, introspect.ErrUnknownClass):
		renderError(w, http.StatusNotFound, "not_found", err.Error())
		return nil, false
	case errors.Is(err, introspect.ErrAmbiguousName):
		renderError(w, http.StatusConflict, "ambiguous_name", err.Error())
		return nil, false
	case err != nil:
		renderError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return nil, false
	}

	meta, err := h.factory.CreateMetadata(class.Name)
	if err != nil {
		if metadata.IsConfigurationError(err) {
			renderError(w, http.StatusUnprocessableEntity, "invalid_configuration", err.Error())
			return nil, false
		}
		h.logger.Error("creating metadata failed", zap.String("entity", class.Name), zap.Error(err))
		renderError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return nil, false
	}

	return meta, true
}

func renderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func renderError(w http.ResponseWriter, status int, code, message string) {
	renderJSON(w, status, ErrorResponse{Error: code, Message: message})
}
