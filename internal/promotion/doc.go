// Package promotion turns a completed rendering job into a catalog product.
// Promotion is idempotent per (job, subfolder): the first call creates the
// product and snapshots its asset references, every later call reports a
// conflict naming the existing product.
package promotion
