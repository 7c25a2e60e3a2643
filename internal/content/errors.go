// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import "errors"

// Error taxonomy for the mutation engine. Wrapped occurrences carry the
// offending id or traversal detail; callers match with errors.Is and map
// onto 404/400-class responses.
var (
	// ErrNotFound means a referenced node id does not resolve.
	ErrNotFound = errors.New("content node not found")

	// ErrInvalidParent means a required ancestor could not be located: an
	// insert target is missing or an ascend/descend traversal was exhausted.
	ErrInvalidParent = errors.New("invalid parent")

	// ErrValidation covers malformed input the engine rejects before
	// touching the store (unknown types, missing required fields). Schema
	// validation proper is the schema collaborator's concern, not ours.
	ErrValidation = errors.New("validation failed")
)
