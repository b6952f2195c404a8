package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bizpilot/internal/core"
	"bizpilot/internal/log"
	"bizpilot/internal/service"
	"bizpilot/internal/store"
)

// Success messages keep the original wire shape: {id, message} on create,
// {message} on update and delete.
var resourceLabels = map[string]string{
	core.CollectionTasks:        "Task",
	core.CollectionClients:      "Client",
	core.CollectionTransactions: "Transaction",
}

func (s *Server) handleCreate(res *service.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := decodeBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		id, err := res.Create(r.Context(), fields)
		if err != nil {
			s.writeServiceError(w, r, res.Collection(), err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"id":      id,
			"message": resourceLabels[res.Collection()] + " added",
		})
	}
}

func (s *Server) handleList(res *service.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := res.List(r.Context())
		if err != nil {
			s.writeServiceError(w, r, res.Collection(), err)
			return
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

func (s *Server) handleUpdate(res *service.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, err := decodeBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := res.Update(r.Context(), r.PathValue("id"), fields); err != nil {
			s.writeServiceError(w, r, res.Collection(), err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": resourceLabels[res.Collection()] + " updated",
		})
	}
}

func (s *Server) handleDelete(res *service.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := res.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.writeServiceError(w, r, res.Collection(), err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": resourceLabels[res.Collection()] + " deleted",
		})
	}
}

// decodeBody parses a JSON object body into a field map. An empty body is an
// empty patch, not an error.
func decodeBody(r *http.Request) (map[string]any, error) {
	fields := make(map[string]any)
	if r.Body == nil {
		return fields, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return fields, nil
}

// writeServiceError maps the error taxonomy to HTTP: validation failures are
// client errors, a missing id is a distinct 404, anything else is a store
// failure surfaced with its raw message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, collection string, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, validationMessage(collection, verr))
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, resourceLabels[collection]+" not found")
	default:
		s.logger.ErrorContext(r.Context(), "Store operation failed",
			log.FieldCollection, collection,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// validationMessage preserves the original error strings per resource.
func validationMessage(collection string, verr *core.ValidationError) string {
	switch collection {
	case core.CollectionTasks:
		return "Title is required"
	case core.CollectionClients:
		return "Name is required"
	case core.CollectionTransactions:
		return "Amount & type required"
	}
	return verr.Error()
}
