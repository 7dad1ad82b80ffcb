// Package frame implements the in-memory columnar Table shared by all
// analyses and the pure transformation stages that operate on it:
// filter, group/aggregate, pivot, derived columns, and left join.
//
// Tables are never mutated in place. Every stage returns a new Table,
// so a pipeline re-run over the same input is idempotent and each
// stage is testable in isolation. Missing values are first-class: a
// cell is either a typed value or null, reducers state explicitly how
// they treat nulls, and predicates fail on null unless they test for
// missingness itself.
package frame
