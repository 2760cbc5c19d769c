// Package pkg provides the core libraries for the conango build shim.
//
// # Overview
//
// Conango fetches C/C++ dependencies through Conan 2 and wires the generated
// toolchain configuration into a CMake build. The pkg directory is organized
// around that flow:
//
//  1. [conan] - Conan adapter (version gate, profiles, recipes, install)
//  2. [cmake] - CMake configure+build driver
//  3. [setup] - Workflow orchestration (validate → install → build)
//  4. [depgraph] - Dependency graph artifact (DOT + SVG)
//
// # Architecture
//
// The typical data flow:
//
//	conango.toml / caller options
//	         ↓
//	    [setup] package (validation, platform workarounds)
//	         ↓
//	    [conan] package (profile, local recipes, conan install)
//	         ↓
//	    generated toolchain flags
//	         ↓
//	    [cmake] package (configure + build)
//
// # Quick Start
//
// Resolve dependencies and run the wrapped build:
//
//	import (
//	    "context"
//	    "github.com/conango/conango/pkg/setup"
//	)
//
//	err := setup.Setup(context.Background(), setup.Options{
//	    Requirements: []string{"fmt/10.2.1", "zlib/[>=1.2]"},
//	})
//
// # Supporting Packages
//
// [errors] - Structured errors with stable codes and remediation hints.
//
// [logging] - Leveled, styled terminal logger (quiet, normal, verbose, debug).
//
// [envscope] - Scoped environment overrides restored on exit.
//
// [retry] - Exponential backoff for transient network failures.
//
// [execx] - Subprocess runner interface, mockable in tests.
//
// [buildinfo] - ldflags-injected version information.
//
// [conan]: https://pkg.go.dev/github.com/conango/conango/pkg/conan
// [cmake]: https://pkg.go.dev/github.com/conango/conango/pkg/cmake
// [setup]: https://pkg.go.dev/github.com/conango/conango/pkg/setup
// [depgraph]: https://pkg.go.dev/github.com/conango/conango/pkg/depgraph
// [errors]: https://pkg.go.dev/github.com/conango/conango/pkg/errors
// [logging]: https://pkg.go.dev/github.com/conango/conango/pkg/logging
// [envscope]: https://pkg.go.dev/github.com/conango/conango/pkg/envscope
// [retry]: https://pkg.go.dev/github.com/conango/conango/pkg/retry
// [execx]: https://pkg.go.dev/github.com/conango/conango/pkg/execx
// [buildinfo]: https://pkg.go.dev/github.com/conango/conango/pkg/buildinfo
package pkg
