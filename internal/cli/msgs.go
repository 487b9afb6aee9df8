package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Build a CMake project into linked LLVM bitcode"
	MsgRunShort       = "Run every pending pipeline stage"
	MsgCompileShort   = "Compile recorded translation units to bitcode"
	MsgLinkShort      = "Link targets from compiled bitcode"
	MsgStatusShort    = "Show which pipeline stages are done"
	MsgResetShort     = "Delete the progress file and the build directory"
	MsgEncodeShort    = "Print the artifact store path for source paths"
	MsgDecodeShort    = "Print the source path for artifact keys"
	MsgArtifactsShort = "List the paths of stored artifacts"
	MsgGenConfigShort = "Print the effective configuration as TOML"
	MsgVersionShort   = "Print version information"
	MsgManShort       = "Generate man pages"

	// Version output
	MsgVersionFormat = "bcforge version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Results
	MsgResetDone   = "Removed %s and %s\n"
	MsgManWritten  = "Man pages written to %s\n"
	MsgConfigSaved = "Configuration written to %s\n"
)

// Long messages
const (
	MsgRootLong = `bcforge drives a CMake project through configure, a logged native build,
metadata extraction, per-unit compilation to LLVM bitcode and dependency-ordered
linking with llvm-link.

Progress is recorded after every stage, so an interrupted or failed run picks up
where it stopped. Compiled and linked artifacts already present in the store are
reused.`

	MsgRunLong = `Run executes the stages that are not yet recorded as done:

  cmake -> remake -> cmaker -> compile_to_llvm -> linking

A failing stage stops the run; fix the cause and run again to resume.`

	MsgCompileLong = `Compile rewrites every compile command recorded by the extractor to emit
bitcode into the object store and runs them in parallel. Units whose bitcode
already exists are skipped. Extraction must have completed.`

	MsgLinkLong = `Link runs llvm-link for every target once all targets it depends on are
linked. Targets already present in the linked store are reused. Compilation must
have completed.`

	MsgEncodeLong = `Encode prints where the artifact for each absolute path is stored. External
tools such as the call-graph pass use this to locate bitcode.`
)
