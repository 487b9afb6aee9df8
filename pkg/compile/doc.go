// Package compile turns the compile commands recorded by the extractor into
// bitcode compilations.
//
// Each recorded command is rewritten so that the original C or C++ compiler
// is replaced by its bitcode-emitting counterpart and the object named after
// -o is redirected into the artifact store. Units whose store entry already
// exists are skipped, so re-running the stage only retries what failed.
package compile
