// Package stages runs the external tools that precede bitcode compilation:
// the configure step (cmake), the logged native build (remake) and the
// metadata extractor (cmaker).
package stages
