// Package hash provides the CRC32-Castagnoli checksum used for dataset
// payloads and S3 upload integrity checks.
//
// Go's hash/crc32 uses the SSE4.2 and ARM CRC instructions for this
// polynomial when they are available.
//
//	sum := hash.CRC32C(data)
package hash
