package buildmode

import (
	"fmt"
	"os"
	"sort"
)

// Mode selects the compilation flavor for the test binary and its solver
// dependency. The empty mode preserves the original build method used by
// network-simulator environments.
type Mode string

const (
	Original         Mode = ""
	DebugASAN        Mode = "debug-asan"
	ReleaseLTO       Mode = "rel-lto"
	ReleaseStaticPGO Mode = "release-static-pgo"
)

// Config holds the per-mode compiler flags and solver CMake arguments.
type Config struct {
	Description string
	CPPFlags    string
	CMakeArgs   []string
}

var configs = map[Mode]Config{
	Original: {
		Description: "original method (simulator compatible)",
	},
	DebugASAN: {
		Description: "debug with AddressSanitizer",
		CPPFlags:    "-O1 -g -fsanitize=address -fno-omit-frame-pointer -D_GLIBCXX_DEBUG",
		CMakeArgs: []string{
			"-DCMAKE_BUILD_TYPE=Debug",
			"-DBUILD_LIBZ3_SHARED=OFF",
			"-DSANITIZE_ADDRESS=ON",
		},
	},
	ReleaseLTO: {
		Description: "release with link-time optimization",
		CPPFlags:    "-O3 -flto -fuse-linker-plugin -g",
		CMakeArgs: []string{
			"-DCMAKE_BUILD_TYPE=Release",
			"-DLINK_TIME_OPTIMIZATION=ON",
			"-DBUILD_LIBZ3_SHARED=OFF",
		},
	},
	ReleaseStaticPGO: {
		Description: "release with PGO and static linking",
		CPPFlags:    "-O3 -flto -fuse-linker-plugin -fprofile-use -march=native -static -s",
		CMakeArgs: []string{
			"-DCMAKE_BUILD_TYPE=Release",
			"-DLINK_TIME_OPTIMIZATION=ON",
			"-DBUILD_LIBZ3_SHARED=OFF",
			"-DCMAKE_C_FLAGS=-fprofile-use",
			"-DCMAKE_CXX_FLAGS=-fprofile-use",
			"-DCMAKE_POSITION_INDEPENDENT_CODE=OFF",
		},
	},
}

// Parse validates a build-mode string. Unknown modes are configuration
// errors naming the value and the valid set.
func Parse(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := configs[m]; !ok {
		return Original, fmt.Errorf("invalid build mode %q (valid: %v)", s, ValidModes())
	}
	return m, nil
}

// FromEnv resolves the build mode from the BUILD_MODE environment variable,
// falling back to the configured mode when the variable is unset.
func FromEnv(configured Mode) (Mode, error) {
	if env := os.Getenv("BUILD_MODE"); env != "" {
		return Parse(env)
	}
	return configured, nil
}

// ValidModes lists the recognized mode names, sorted.
func ValidModes() []string {
	names := make([]string, 0, len(configs))
	for m := range configs {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}

// Describe returns the human-readable description of m.
func (m Mode) Describe() string {
	return configs[m].Description
}

// CPPFlags returns the C++ compiler flags for m.
func (m Mode) CPPFlags() string {
	return configs[m].CPPFlags
}

// CMakeArgs returns a copy of the solver CMake arguments for m.
func (m Mode) CMakeArgs() []string {
	args := configs[m].CMakeArgs
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// UseCMake reports whether the solver should be built with CMake. The
// original mode uses the legacy build script instead.
func (m Mode) UseCMake() bool {
	return m != Original
}

// Env returns mode-specific environment variables for the build.
func (m Mode) Env() map[string]string {
	env := map[string]string{"BUILD_MODE": string(m)}
	switch m {
	case DebugASAN:
		env["ASAN_OPTIONS"] = "detect_leaks=1:abort_on_error=1"
	case ReleaseStaticPGO:
		env["CFLAGS"] = "-fprofile-use"
		env["CXXFLAGS"] = "-fprofile-use"
	}
	return env
}
