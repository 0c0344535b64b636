// Package cli implements the nkit command line interface: decode,
// encode, verify, and resolve, with shared text/JSON output formatting
// and exit-code conventions.
package cli
