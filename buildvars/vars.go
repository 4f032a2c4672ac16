// Copyright (c) 2026 Toolkit Authors
// Toolkit - course workspace manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via `-ldflags -X github.com/brenoschmidt/toolkit/buildvars.Version=...`.
// It will be empty for local or development builds.
var Version string

// GitCommit is the short commit SHA, set at link time.
var GitCommit string

// BuildDate is the RFC3339 build timestamp, set at link time.
var BuildDate string

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
