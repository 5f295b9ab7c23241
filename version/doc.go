// Package version provides version information and build metadata for vzip.
//
// Version information is injected at build time via -ldflags and falls back
// to the module's build info from debug.ReadBuildInfo():
//
//	-ldflags "-X github.com/dendrascience/vzip/version.Version=v1.0.0 -X github.com/dendrascience/vzip/version.Commit=abc123 -X github.com/dendrascience/vzip/version.Date=2024-01-01T00:00:00Z"
//
// The version is printed by `vzip --version` and recorded in every archive's
// metadata sidecar.
package version
