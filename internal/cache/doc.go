// Package cache provides the SQLite-backed generation cache.
//
// Every `rtinit generate --cache` run records, per declaration file: a
// run ID, the source path, the input digest (Key over the parsed
// manifest's ir.FileDigest and the emit options), the digest of the
// emitted Go source, and a timestamp. On the next run an unchanged
// input digest means the generated output would be byte-identical, so
// emission can be skipped.
//
// The cache is strictly an optimization and audit trail: a miss, a
// stale entry, or an absent cache never changes generated output, only
// whether a file is rewritten.
package cache
