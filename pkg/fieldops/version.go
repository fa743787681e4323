// Package fieldops exposes module-level metadata.
package fieldops

// Version is the fieldops release version.
const Version = "0.1.0"
