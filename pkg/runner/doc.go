// Package runner starts the external tools bcforge drives: cmake, remake,
// cmaker, the bitcode compilers and llvm-link.
//
// Every command carries its own working directory. The process never changes
// its own working directory, so concurrent commands cannot interfere.
package runner
