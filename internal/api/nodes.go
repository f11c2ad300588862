package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/repository"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

type mergeFunc func(ctx context.Context, id string, props map[string]any) (graph.Projection, bool, error)

type removeFunc func(ctx context.Context, id string, keys []string) (graph.Projection, bool, error)

// nodeHandlers serves the generic CRUD surface of one label.
type nodeHandlers struct {
	s    *Server
	repo *repository.Repository
}

func (h nodeHandlers) list(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	nodes, err := h.repo.FindNodes(r.Context(), nil, limit)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeList(w, nodes)
}

func (h nodeHandlers) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, found, err := h.repo.FindNodeByID(r.Context(), id)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, fmt.Sprintf("No %s found with id %s", h.repo.Label(), id))
		return
	}
	writeOne(w, http.StatusOK, node)
}

func (h nodeHandlers) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeProperties(r)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	labels, err := schema.ParseLabels(body.AdditionalLabels)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	node, err := h.repo.CreateNode(r.Context(), body.Properties, labels...)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Item created successfully", node)
}

func (h nodeHandlers) update(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "Item updated successfully", h.repo.UpdateNode)
}

func (h nodeHandlers) addProperties(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "Properties added successfully", h.repo.AddPropertiesToNode)
}

func (h nodeHandlers) removeProperties(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Properties removed successfully", h.repo.RemovePropertiesFromNode)
}

func (h nodeHandlers) updateRelationship(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "Relationship updated successfully", h.repo.UpdateRelationship)
}

func (h nodeHandlers) addRelationshipProperties(w http.ResponseWriter, r *http.Request) {
	h.merge(w, r, "Properties added successfully", h.repo.AddPropertiesToRelationship)
}

func (h nodeHandlers) removeRelationshipProperties(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "Properties removed successfully", h.repo.RemovePropertiesFromRelationship)
}

func (h nodeHandlers) merge(w http.ResponseWriter, r *http.Request, message string, apply mergeFunc) {
	id := chi.URLParam(r, "id")
	body, err := decodeProperties(r)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	result, found, err := apply(r.Context(), id, body.Properties)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, fmt.Sprintf("No item found with id %s", id))
		return
	}
	writeMessage(w, http.StatusOK, message, result)
}

func (h nodeHandlers) remove(w http.ResponseWriter, r *http.Request, message string, apply removeFunc) {
	id := chi.URLParam(r, "id")
	var req removePropertiesRequest
	if err := decodeBody(r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.s.validateStruct(req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	result, found, err := apply(r.Context(), id, req.Properties)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, fmt.Sprintf("No item found with id %s", id))
		return
	}
	writeMessage(w, http.StatusOK, message, result)
}

func (h nodeHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.repo.DeleteNode(r.Context(), id)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !deleted {
		writeNotFound(w, fmt.Sprintf("No %s found with id %s", h.repo.Label(), id))
		return
	}
	writeMessage(w, http.StatusOK, "Item deleted successfully", nil)
}

func (h nodeHandlers) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req batchUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.s.validateStruct(req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	updated, err := h.repo.BatchUpdateNodes(r.Context(), req.IDs, req.Properties)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("%d items updated successfully", updated),
		map[string]int{"updated": updated})
}

func (h nodeHandlers) batchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.s.validateStruct(req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	deleted, err := h.repo.BatchDeleteNodes(r.Context(), req.IDs)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("%d items deleted successfully", deleted),
		map[string]int{"deleted": deleted})
}

func (h nodeHandlers) createRelationship(w http.ResponseWriter, r *http.Request) {
	relType, err := schema.ParseRelType(chi.URLParam(r, "type"))
	if err != nil {
		h.s.fail(w, r, err)
		return
	}

	props := map[string]any{}
	if r.ContentLength != 0 {
		var raw map[string]any
		if err := decodeBody(r, &raw); err != nil {
			h.s.fail(w, r, err)
			return
		}
		props = raw
		if nested, ok := raw["properties"].(map[string]any); ok {
			props = nested
		}
	}

	rel, found, err := h.repo.CreateRelationship(r.Context(),
		chi.URLParam(r, "fromId"), chi.URLParam(r, "toId"), relType, props)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "Could not create relationship. Check if nodes exist.")
		return
	}
	writeMessage(w, http.StatusCreated, "Relationship created successfully", rel)
}

func (h nodeHandlers) deleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.repo.DeleteRelationship(r.Context(), id)
	if err != nil {
		h.s.fail(w, r, err)
		return
	}
	if !deleted {
		writeNotFound(w, fmt.Sprintf("No relationship found with id %s", id))
		return
	}
	writeMessage(w, http.StatusOK, "Relationship deleted successfully", nil)
}

func (h nodeHandlers) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	if err := h.s.validateStruct(req); err != nil {
		h.s.fail(w, r, err)
		return
	}
	records, err := h.repo.ExecuteQuery(r.Context(), req.Query, req.Params)
	if err != nil {
		h.s.failWith(w, r, err, true)
		return
	}
	writeList(w, records)
}
