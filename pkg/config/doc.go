// Package config handles configuration management for bcforge.
//
// Configuration is layered, later sources overriding earlier ones:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. a config file: --config, else $BCFORGE_CONFIG, else ./bcforge.toml
//     when present. TOML unless the extension is .yaml, .yml or .json
//  3. BCFORGE_* environment variables, e.g. BCFORGE_TOOLS_LLVM_LINK
//  4. command-line overrides
package config
