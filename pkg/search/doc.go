// Package search evaluates parsed queries against a corpus of provenance
// documents and returns the ids of the documents that matched.
package search
