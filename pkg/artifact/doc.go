// Package artifact implements the artifact store shared by the compile and
// link stages.
//
// The store is two flat directories: one holding compiled bitcode, one holding
// linked bitcode. Each artifact is named by the percent-encoding of the logical
// absolute path it stands for, so nested source paths map to single filenames.
// A file existing under its key is the only cache signal; content is never
// inspected.
package artifact
