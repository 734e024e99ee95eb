// Package catalog persists decoded songs in a SQLite index.
//
// Each row is keyed by the BLAKE3 digest of the input file so re-decoding the
// same bytes updates the existing entry. Serialized documents are optionally
// stored xz-compressed. Batch runs are recorded with a UUID so entries can be
// traced back to the run that produced them.
//
// Only one writer may hold a catalog at a time; OpenWriter takes an advisory
// lock file next to the database.
package catalog
