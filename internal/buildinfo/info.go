// Package buildinfo carries version metadata stamped at build time via
// -ldflags -X; defaults identify a from-source build.
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
