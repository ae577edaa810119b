package domain

import "errors"

// ErrInvalidArchive is returned when the root documents are missing or
// unparsable, or the container does not have the UUID-rooted layout.
var ErrInvalidArchive = errors.New("not a valid QIIME 2 archive")

// ErrMissingProvenance is returned by loaders when a non-root document is
// absent. The builder absorbs it by truncating that branch.
var ErrMissingProvenance = errors.New("missing provenance")

// ErrSyntax is matched by query syntax errors.
var ErrSyntax = errors.New("syntax error")

// ErrNoMatches is returned when a query evaluates to an empty hit set.
var ErrNoMatches = errors.New("no matches")

// ErrResultNotFound is returned when a loaded result cannot be found in a store.
var ErrResultNotFound = errors.New("result not found")
