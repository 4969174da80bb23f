// Package exttool runs the external collaborators of a batch as child processes.
//
// Two tools are driven through the same Runner:
//
//   - the per-file importer (CommandImporter), invoked once per item as
//     "<command> <args...> --taxonomy <cache> --prefixes <p1,p2> [--verbose] <item>"
//     with ASDB_DATABASE naming the working database;
//   - the taxonomy cache builder (CommandTaxonomyBuilder), invoked once per batch as
//     "<command> <args...> --cache <cache> --datadir <dir> --mergeddump <m> --rankedlineage <r>".
//
// The outcome of an invocation is its exit status alone. In verbose mode the child's
// stdout and stderr are forwarded; otherwise stdout is discarded and the last lines
// of stderr are kept for the failure report.
package exttool
