// Package fetch materializes pinned, checksummed third-party archives.
//
// A fetch is all-or-nothing: the archive is downloaded from the first
// working URL, verified against its declared digests before a single byte is
// extracted, then extracted and patched. Any failure after extraction starts
// removes the partially materialized directory so downstream consumers never
// observe half-applied state.
package fetch
