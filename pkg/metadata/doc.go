// Package metadata loads the build metadata graph emitted by the external
// extraction tool: the compiled objects, the link targets with their
// dependency edges, and the raw compile commands.
//
// A Collection is read once and never modified afterwards; the Graph built on
// top of it is shared read-only by every worker and addresses targets by
// integer index.
package metadata
