// Package conv converts between integer widths and fails instead of
// silently truncating. It guards the fixed-width fields of binary headers.
package conv
