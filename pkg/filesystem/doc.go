// Package filesystem provides filesystem implementations for bcforge.
//
// This package contains implementations of the types.FS interface:
// the standard OS filesystem and an afero-backed one used in tests.
package filesystem
