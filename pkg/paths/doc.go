// Package paths provides centralized path handling for bcforge.
//
// Every stage receives explicit absolute paths from a Paths value instead of
// changing the process working directory. The layout below the work root is:
//
//	<root>/.progress             pipeline checkpoint
//	<root>/bc_build/             build directory (cmake runs here against <root>)
//	<root>/bc_build/remake.log   captured build output
//	<root>/bc_build/cmaker.log   build metadata graph
//	<root>/bc_build/objects/     compiled bitcode, one file per encoded unit path
//	<root>/bc_build/linked/      linked bitcode, one file per encoded target path
//
// # Environment Variables
//
//   - BCFORGE_ROOT: work root used when none is given (default: current directory)
package paths
