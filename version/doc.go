// Package version exposes build metadata of the docpage binary.
//
// Set the variables with linker flags:
//
//	go build -ldflags "-X github.com/ncobase/docpage/version.Version=v1.2.0 \
//	  -X github.com/ncobase/docpage/version.Branch=main"
//
// Anything left unset falls back to the VCS information stamped by the Go
// toolchain.
package version
