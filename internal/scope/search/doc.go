// Package search implements the prompt retrieval pipeline: text normalization,
// typo-tolerant conjunctive matching, attribute filters, relevance ranking and
// tag facet extraction.
//
// Every function is pure. Inputs are never mutated and no state is shared
// between calls, so callers may run searches concurrently without coordination.
package search
