// Package fs abstracts the file system operations behind atomic local blob
// writes so that tests can inject I/O failures.
//
//   - [LocalFS] uses the os package and is the [Default].
//   - [FaultyFS] wraps another FileSystem and fails writes, syncs or closes
//     of files whose name contains a configured pattern.
//
// Reads do not go through this package; local blobs are memory mapped.
package fs
