// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the content API.
// Handlers receive their dependencies through the handler struct and speak
// JSON exclusively.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"courseforge/internal/content"
	"courseforge/internal/models"
)

// Content groups the content-tree HTTP handlers and their dependencies.
type Content struct {
	engine *content.Engine
}

// NewContent creates a new Content handler group around the engine.
func NewContent(e *content.Engine) *Content {
	return &Content{engine: e}
}

// Create handles POST /api/content: inserts a single node.
func (c *Content) Create(w http.ResponseWriter, r *http.Request) {
	var node models.ContentNode
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateNode(&node); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := c.engine.Insert(r.Context(), &node, content.InsertOptions{})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PATCH /api/content/{id}: applies a shallow field delta.
func (c *Content) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var delta map[string]any
	if err := json.NewDecoder(r.Body).Decode(&delta); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := c.engine.Update(r.Context(), id, delta)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/content/{id}: removes the node and its whole
// subtree, answering with everything that was removed.
func (c *Content) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := c.engine.Delete(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// Descendants handles GET /api/content/{id}/descendants.
func (c *Content) Descendants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	root, err := c.engine.Store().Get(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if root == nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}

	nodes, err := c.engine.Descendants(r.Context(), root)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if nodes == nil {
		nodes = []*models.ContentNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

// cloneRequest is the body of POST /api/content/clone. IsCut turns the
// paste into a move.
type cloneRequest struct {
	ID        uuid.UUID      `json:"id"`
	ParentID  *uuid.UUID     `json:"parentId,omitempty"`
	CreatedBy uuid.UUID      `json:"createdBy"`
	Custom    map[string]any `json:"custom,omitempty"`
	IsCut     bool           `json:"isCut,omitempty"`
}

// Clone handles POST /api/content/clone.
func (c *Content) Clone(w http.ResponseWriter, r *http.Request) {
	var req cloneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	placed, err := c.engine.Clone(r.Context(), req.CreatedBy, req.ID, req.ParentID, req.Custom, req.IsCut)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

// insertRecursiveRequest is the body of POST /api/content/insertrecursive.
// A nil rootId creates a whole new course.
type insertRecursiveRequest struct {
	RootID     *uuid.UUID     `json:"rootId,omitempty"`
	CreatedBy  uuid.UUID      `json:"createdBy"`
	Custom     map[string]any `json:"custom,omitempty"`
	ChildTypes []string       `json:"childTypes,omitempty"`
}

// InsertRecursive handles POST /api/content/insertrecursive.
func (c *Content) InsertRecursive(w http.ResponseWriter, r *http.Request) {
	var req insertRecursiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chain := make([]models.NodeType, 0, len(req.ChildTypes))
	for _, raw := range req.ChildTypes {
		typ := models.NodeType(raw)
		if !typ.Valid() {
			writeError(w, http.StatusBadRequest, "unknown child type "+raw)
			return
		}
		chain = append(chain, typ)
	}

	first, err := c.engine.InsertRecursive(r.Context(), req.RootID, req.CreatedBy, req.Custom, chain)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, first)
}

// pathID parses the {id} route parameter, answering a 400 on garbage.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine sentinel errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, content.ErrInvalidParent), errors.Is(err, content.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("content operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
