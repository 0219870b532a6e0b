// Package catalog persists promoted products and their asset references in
// SQLite. The catalog is append-only: products are created once per source
// job and never updated or deleted through this package, and the unique
// (source_job_id, source_subfolder) index is what makes promotion idempotent.
package catalog
