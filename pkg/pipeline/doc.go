// Package pipeline drives the five bcforge stages in order and records
// progress so an interrupted or failed run resumes where it stopped.
//
// Stages run strictly in sequence:
//
//	cmake -> remake -> cmaker -> compile_to_llvm -> linking
//
// A stage whose flag is already set is skipped. A stage may only run once
// its predecessor is recorded as done. The build metadata is loaded at most
// once per Controller, after extraction, and only when a later stage needs
// it.
package pipeline
