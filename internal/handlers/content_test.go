// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"courseforge/internal/content"
	"courseforge/internal/i18n"
	"courseforge/internal/models"
	"courseforge/internal/plugins"
	"courseforge/internal/store"
)

func testAPI(t *testing.T) (*Content, *content.Engine, *store.Memory) {
	t.Helper()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	mem := store.NewMemory()
	reg := plugins.NewStaticRegistry(plugins.Defaults()...)
	engine := content.New(mem, reg, catalog, nil, "en")
	return NewContent(engine), engine, mem
}

// testMux wires the handler group the way the router does, so URL
// parameters resolve.
func testMux(api *Content) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/content", api.Create)
	r.Post("/api/content/clone", api.Clone)
	r.Post("/api/content/insertrecursive", api.InsertRecursive)
	r.Patch("/api/content/{id}", api.Update)
	r.Delete("/api/content/{id}", api.Delete)
	r.Get("/api/content/{id}/descendants", api.Descendants)
	return r
}

func seedCourse(t *testing.T, e *content.Engine) *models.ContentNode {
	t.Helper()
	course, err := e.InsertRecursive(context.Background(), nil, uuid.New(), nil, nil)
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func decodeNode(t *testing.T, body *bytes.Buffer) *models.ContentNode {
	t.Helper()
	var n models.ContentNode
	if err := json.NewDecoder(body).Decode(&n); err != nil {
		t.Fatalf("decode node: %v", err)
	}
	return &n
}

func TestCreateContent(t *testing.T) {
	api, e, _ := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	payload := `{"_type":"page","_parentId":"` + course.ID.String() +
		`","_courseId":"` + course.ID.String() + `","title":"Second page"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content", strings.NewReader(payload)))

	if w.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	node := decodeNode(t, w.Body)
	if node.Type != models.TypePage || node.Title != "Second page" {
		t.Errorf("created node: got %s %q", node.Type, node.Title)
	}
	if node.SortOrder != 2 {
		t.Errorf("sort order: got %d, want 2 (after the seeded page)", node.SortOrder)
	}
}

func TestCreateContentRejectsBadInput(t *testing.T) {
	api, e, _ := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	// Malformed JSON.
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content", strings.NewReader("{nope")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: got %d, want 400", w.Code)
	}

	// Oversized title.
	payload := `{"_type":"page","_parentId":"` + course.ID.String() +
		`","title":"` + strings.Repeat("x", 301) + `"}`
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content", strings.NewReader(payload)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("long title: got %d, want 400", w.Code)
	}

	// Orphan page.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content", strings.NewReader(`{"_type":"page"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing parent: got %d, want 400", w.Code)
	}
}

func TestUpdateContent(t *testing.T) {
	api, e, _ := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("PATCH", "/api/content/"+course.ID.String(),
		strings.NewReader(`{"title":"Renamed"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", w.Code, w.Body.String())
	}
	node := decodeNode(t, w.Body)
	if node.Title != "Renamed" {
		t.Errorf("title: got %q, want %q", node.Title, "Renamed")
	}
}

func TestUpdateContentErrors(t *testing.T) {
	api, _, _ := testAPI(t)
	h := testMux(api)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("PATCH", "/api/content/"+uuid.NewString(),
		strings.NewReader(`{"title":"x"}`)))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("PATCH", "/api/content/not-a-uuid",
		strings.NewReader(`{"title":"x"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d, want 400", w.Code)
	}
}

func TestDeleteContentReturnsSubtree(t *testing.T) {
	api, e, mem := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/content/"+course.ID.String(), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var resp struct {
		Deleted []json.RawMessage `json:"deleted"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// course + config + page + article + block + component.
	if len(resp.Deleted) != 6 {
		t.Errorf("deleted: got %d entries, want 6", len(resp.Deleted))
	}
	if mem.Len() != 0 {
		t.Errorf("store: %d nodes left, want 0", mem.Len())
	}
}

func TestDescendantsEndpoint(t *testing.T) {
	api, e, _ := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/content/"+course.ID.String()+"/descendants", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 (%s)", w.Code, w.Body.String())
	}
	var nodes []*models.ContentNode
	if err := json.NewDecoder(w.Body).Decode(&nodes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(nodes) != 5 {
		t.Errorf("got %d descendants, want 5", len(nodes))
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/content/"+uuid.NewString()+"/descendants", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown root: got %d, want 404", w.Code)
	}
}

func TestCloneEndpoint(t *testing.T) {
	api, e, mem := testAPI(t)
	h := testMux(api)
	course := seedCourse(t, e)

	before := mem.Len()
	payload := `{"id":"` + course.ID.String() + `","createdBy":"` + uuid.NewString() + `"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content/clone", strings.NewReader(payload)))

	if w.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	copied := decodeNode(t, w.Body)
	if copied.ID == course.ID {
		t.Error("clone must get a fresh id")
	}
	if mem.Len() != before*2 {
		t.Errorf("store: got %d nodes, want %d", mem.Len(), before*2)
	}

	// Missing id.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content/clone",
		strings.NewReader(`{"createdBy":"`+uuid.NewString()+`"}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing id: got %d, want 400", w.Code)
	}
}

func TestInsertRecursiveEndpoint(t *testing.T) {
	api, _, mem := testAPI(t)
	h := testMux(api)

	payload := `{"createdBy":"` + uuid.NewString() + `","custom":{"title":"From scratch"}}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content/insertrecursive", strings.NewReader(payload)))

	if w.Code != http.StatusCreated {
		t.Fatalf("got %d, want 201 (%s)", w.Code, w.Body.String())
	}
	course := decodeNode(t, w.Body)
	if course.Type != models.TypeCourse || course.Title != "From scratch" {
		t.Errorf("got %s %q, want the customized course", course.Type, course.Title)
	}
	if mem.Len() != 6 {
		t.Errorf("store: got %d nodes, want 6", mem.Len())
	}

	// Unknown child type.
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/content/insertrecursive",
		strings.NewReader(`{"createdBy":"`+uuid.NewString()+`","childTypes":["widget"]}`)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown child type: got %d, want 400", w.Code)
	}
}
