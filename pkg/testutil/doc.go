// Package testutil provides helpers shared by bcforge tests.
//
// Key components:
//   - FakeTool: a shell script standing in for a compiler or llvm-link that
//     records its argv and writes the file named after -o
//   - MockRunner: a testify mock of runner.Runner
//   - Fixtures: small metadata collections for linker and pipeline tests
//
// Tests that spawn FakeTool need /bin/sh and are skipped on Windows.
package testutil
