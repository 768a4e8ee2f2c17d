// Package id provides identifier generation for hydra.
//
//   - UUID: random UUID v4, used for request ids
//   - ULID: time-sortable identifiers, used for test run ids
//
// ULIDs of runs started later sort after earlier ones, so the admin API can
// list runs chronologically by id.
package id
