// Package linker links the targets of a build metadata graph into bitcode.
//
// A target is linked only after every target it depends on has been linked
// (or found in the artifact store). A fixed pool of workers pulls ready
// targets from a channel; finishing a target releases the dependents whose
// last unsatisfied dependency it was. The first link failure cancels the
// remaining work.
package linker
