// Package toolwrap holds build metadata shared by the toolwrap binaries.
package toolwrap

// Version is the toolwrap release version.
var Version = "0.3.0"
