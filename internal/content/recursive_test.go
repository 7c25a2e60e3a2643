package content

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"courseforge/internal/i18n"
	"courseforge/internal/models"
	"courseforge/internal/store"
)

func TestInsertRecursiveNewCourse(t *testing.T) {
	e, mem := newTestEngine(t)
	ctx := context.Background()
	user := uuid.New()

	course, err := e.InsertRecursive(ctx, nil, user, nil, nil)
	if err != nil {
		t.Fatalf("InsertRecursive: %v", err)
	}
	if course.Type != models.TypeCourse {
		t.Fatalf("got %s, want the new course back", course.Type)
	}
	if course.CourseID != course.ID {
		t.Error("course must root its own courseId")
	}
	if course.Title == "" {
		t.Error("expected a localized placeholder title")
	}

	// course + config + page + article + block + component.
	if mem.Len() != 6 {
		t.Fatalf("store: got %d nodes, want 6", mem.Len())
	}

	desc, err := e.Descendants(ctx, course)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	byType := make(map[models.NodeType]*models.ContentNode, len(desc))
	for _, d := range desc {
		byType[d.Type] = d
	}
	for _, typ := range []models.NodeType{
		models.TypeConfig, models.TypePage, models.TypeArticle,
		models.TypeBlock, models.TypeComponent,
	} {
		n, ok := byType[typ]
		if !ok {
			t.Errorf("missing %s in the fresh course", typ)
			continue
		}
		if n.CourseID != course.ID {
			t.Errorf("%s: courseId got %s, want %s", typ, n.CourseID, course.ID)
		}
		if n.CreatedBy != user {
			t.Errorf("%s: createdBy got %s, want %s", typ, n.CreatedBy, user)
		}
	}

	cfg := byType[models.TypeConfig]
	if cfg.Menu != "boxmenu" || cfg.Theme != "vanilla" {
		t.Errorf("config defaults: got menu %q theme %q", cfg.Menu, cfg.Theme)
	}
	comp := byType[models.TypeComponent]
	if comp.Component != "text" || comp.Layout != models.LayoutFull {
		t.Errorf("component defaults: got %q on %q", comp.Component, comp.Layout)
	}
}

func TestInsertRecursiveBelowExistingRoot(t *testing.T) {
	e, mem := newTestEngine(t)
	f := buildFixture(t, e, false)
	ctx := context.Background()

	before := mem.Len()
	first, err := e.InsertRecursive(ctx, &f.page.ID, f.user, nil, nil)
	if err != nil {
		t.Fatalf("InsertRecursive: %v", err)
	}

	// page root: article + block + component, no config.
	if mem.Len() != before+3 {
		t.Fatalf("store: got %d new nodes, want 3", mem.Len()-before)
	}
	if first.Type != models.TypeArticle {
		t.Errorf("got %s, want the first created node (the article)", first.Type)
	}
	if first.ParentID == nil || *first.ParentID != f.page.ID {
		t.Error("expected the new article under the given page")
	}
	if first.SortOrder != 2 {
		t.Errorf("new article: sort order got %d, want 2 (after the existing one)", first.SortOrder)
	}
}

func TestInsertRecursiveAppliesCustomToFirstNode(t *testing.T) {
	e, mem := newTestEngine(t)
	f := buildFixture(t, e, false)
	ctx := context.Background()

	first, err := e.InsertRecursive(ctx, &f.article.ID, f.user,
		map[string]any{"title": "custom block"}, nil)
	if err != nil {
		t.Fatalf("InsertRecursive: %v", err)
	}

	if first.Title != "custom block" {
		t.Errorf("first node title: got %q, want the custom one", first.Title)
	}
	// The component below it keeps its placeholder.
	kids, _ := mem.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldParentID: first.ID,
	}})
	if len(kids) != 1 {
		t.Fatalf("got %d children, want 1", len(kids))
	}
	if kids[0].Title == "custom block" {
		t.Error("custom fields must only apply to the first created node")
	}
}

func TestInsertRecursiveExplicitChainAndMenuRoot(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	user := uuid.New()

	course, err := e.InsertRecursive(ctx, nil, user, nil, nil)
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	menu, err := e.Insert(ctx, &models.ContentNode{
		Type: models.TypeMenu, ParentID: &course.ID, CourseID: course.ID, Title: "Menu",
	}, InsertOptions{})
	if err != nil {
		t.Fatalf("insert menu: %v", err)
	}

	// A menu root infers the full content-object chain, same as a course.
	first, err := e.InsertRecursive(ctx, &menu.ID, user, nil, nil)
	if err != nil {
		t.Fatalf("InsertRecursive under menu: %v", err)
	}
	if first.Type != models.TypePage {
		t.Errorf("got %s, want a page under the menu", first.Type)
	}
	if first.ParentID == nil || *first.ParentID != menu.ID {
		t.Error("expected the page under the menu")
	}
}

func TestInsertRecursiveUnknownRootFails(t *testing.T) {
	e, _ := newTestEngine(t)
	ghost := uuid.New()

	_, err := e.InsertRecursive(context.Background(), &ghost, uuid.New(), nil, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestInsertRecursiveRollsBackOnFailure(t *testing.T) {
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	mem := store.NewMemory()
	flaky := &flakyStore{Memory: mem, failAfter: 3}
	e := New(flaky, testRegistry(), catalog, nil, "en")

	_, err = e.InsertRecursive(context.Background(), nil, uuid.New(), nil, nil)
	if err == nil {
		t.Fatal("expected the injected insert failure to surface")
	}
	if mem.Len() != 0 {
		t.Errorf("store: %d nodes left after rollback, want 0", mem.Len())
	}
}

// flakyStore fails every Insert after the first failAfter calls, simulating
// a store outage mid-chain.
type flakyStore struct {
	*store.Memory
	failAfter int
	calls     int
}

func (f *flakyStore) Insert(ctx context.Context, n *models.ContentNode) (*models.ContentNode, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("store unavailable")
	}
	return f.Memory.Insert(ctx, n)
}
