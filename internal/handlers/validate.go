package handlers

import (
	"unicode/utf8"

	"courseforge/internal/models"
)

// Validation limits for incoming content fields.
const (
	maxTitleLen = 300
	maxBodyLen  = 100_000
)

// validateNode checks an incoming node and returns the first problem found.
// Structural validation (type, parent) belongs to the engine; this guards
// only the free-text fields.
func validateNode(n *models.ContentNode) string {
	if utf8.RuneCountInString(n.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(n.DisplayTitle) > maxTitleLen {
		return "Display title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(n.Body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	return ""
}
