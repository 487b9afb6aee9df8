// Package checkpoint persists which pipeline stages have completed so an
// interrupted run resumes after the last finished stage.
//
// A Checkpoint is loaded once at startup, flipped stage by stage as each one
// succeeds, and written back by Close whether the run succeeded or not. If the
// first stage never completed, Close also removes the build directory: a
// half-configured build tree is not worth resuming.
package checkpoint
