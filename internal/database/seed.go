package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"courseforge/internal/content"
	"courseforge/internal/models"
	"courseforge/internal/store"
)

// seedUser is the creator recorded on seeded nodes.
var seedUser = uuid.Nil

// Seed populates the store with initial development data: one sample
// course built through the engine so it gets the full config, placeholder
// chain, and plugin reconciliation. Skips when any course already exists.
func Seed(ctx context.Context, e *content.Engine) error {
	existing, err := e.Store().Find(ctx, store.Query{Eq: map[string]any{
		models.FieldType: models.TypeCourse,
	}})
	if err != nil {
		return fmt.Errorf("seed check courses: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("store already seeded, skipping")
		return nil
	}

	course, err := e.InsertRecursive(ctx, nil, seedUser, map[string]any{
		"title":        "Sample course",
		"displayTitle": "Sample course",
		"body":         "A starter course created by the development seed.",
	}, nil)
	if err != nil {
		return fmt.Errorf("seed sample course: %w", err)
	}

	slog.Info("store seeded with sample course", "course", course.ID)
	return nil
}
