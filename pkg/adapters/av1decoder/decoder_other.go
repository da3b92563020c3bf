//go:build !aom

// Package av1decoder provides an AV1 still-image decoder plugin using
// libaom. Without the aom build tag the package registers nothing and
// AV1 items report no compatible decoder.
package av1decoder

// Available reports whether the libaom backend is compiled in.
func Available() bool { return false }
