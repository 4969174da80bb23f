// Package progress implements the durable record of item outcomes across batch runs.
//
// Three plain-text logs hold one item path per line:
//
//   - the success log (imported_files.txt) is append-only, never truncated or
//     compacted, and is the only source consulted to decide that an item must not be
//     imported again;
//   - the failure log (failed_files.txt) is truncated at the start of every batch and
//     enumerates the items that failed in that batch;
//   - the deferred log (deferred_files.txt) is created empty at batch start and is
//     reserved for a future retry workflow.
//
// Every append is fsynced before it returns, so an entry that MarkImported reported
// as written survives a crash. Paths are compared as exact strings; "a/b.json" and
// "./a/b.json" are different entries.
package progress
