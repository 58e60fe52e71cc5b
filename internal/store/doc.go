// Package store implements the artifact store: a flat namespace of named
// files under one per-run directory. All pipeline stages read and write
// artifacts through it, and cleanup runs against it with an explicit
// missing-is-fine deletion policy.
package store
