// Package mmap provides read-only memory-mapped access to local files.
//
// # Usage
//
//	m, err := mmap.Open("blobs.kcm")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): uses mmap(2)
//   - Other platforms: the file is read into memory once
//
// # Thread Safety
//
// A File is safe for concurrent reads. Close is idempotent; callers must not
// use the slice returned by Bytes after Close returns.
package mmap
