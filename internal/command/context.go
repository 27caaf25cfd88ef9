package command

import (
	"fmt"
	"os"
	"path"
	"strings"

	"ivyharness/internal/buildmode"
	"ivyharness/internal/params"
	"ivyharness/internal/roles"
)

// Context carries everything the phase generators need, resolved once per
// run and passed by value. There is no ambient cache: two generators built
// from equal inputs produce byte-identical command sequences.
type Context struct {
	Protocol        string
	Role            roles.Role
	ServiceName     string
	Targets         []string
	Mapping         roles.Mapping
	TestName        string
	BuildMode       buildmode.Mode
	UseSystemModels bool
	InternalIters   int
	TimeoutSec      int
	Workdir         string // project dir for template overrides
	Params          params.Set
}

// NewContext validates and freezes the per-run resolution state.
func NewContext(protocol string, role roles.Role, serviceName string, targets []string, testName string, mode buildmode.Mode) (Context, error) {
	if protocol == "" {
		protocol = "unknown"
	}
	if serviceName == "" {
		return Context{}, fmt.Errorf("service name is required for placeholder resolution")
	}
	if testName == "" {
		return Context{}, fmt.Errorf("no test name configured")
	}
	return Context{
		Protocol:      protocol,
		Role:          role,
		ServiceName:   serviceName,
		Targets:       append([]string(nil), targets...),
		Mapping:       roles.BuildMapping(role, serviceName, targets),
		TestName:      testName,
		BuildMode:     mode,
		InternalIters: 100,
		TimeoutSec:    120,
	}, nil
}

// PrimaryTarget returns the first candidate target, or "" when none are
// configured.
func (c Context) PrimaryTarget() string {
	if len(c.Targets) == 0 {
		return ""
	}
	return c.Targets[0]
}

// ModelPath returns the container path to the protocol model sources.
// Environment variables override the defaults so the same binary works
// inside and outside the standard container layout.
func (c Context) ModelPath() string {
	base := envOr("IVYHARNESS_BASE_PATH", "/opt/ivyharness/protocol-testing")
	if c.UseSystemModels {
		sub := envOr("IVYHARNESS_APT_SUBPATH", "apt/apt_protocols")
		return path.Join(base, sub, c.Protocol)
	}
	if sub := os.Getenv("IVYHARNESS_STANDARD_SUBPATH"); sub != "" {
		return path.Join(base, sub, c.Protocol)
	}
	return path.Join(base, c.Protocol)
}

// BuildDir returns the build directory name under the model path.
func (c Context) BuildDir() string {
	return envOr("IVYHARNESS_BUILD_DIR", "build")
}

// TestDir returns the model subdirectory holding the test sources. Test
// names carry their side; otherwise the opposing role decides.
func (c Context) TestDir() string {
	switch {
	case containsFold(c.TestName, "client"):
		return "client_tests"
	case containsFold(c.TestName, "server"):
		return "server_tests"
	default:
		return string(roles.Opposite(c.Role)) + "_tests"
	}
}

// BuildEnv returns the environment variables the compile phase exports,
// merging the build-mode variables with the model layout.
func (c Context) BuildEnv() map[string]string {
	env := c.BuildMode.Env()
	env["IVYHARNESS_BASE_DIR"] = c.ModelPath()
	env["PROTOCOL"] = c.Protocol
	if c.UseSystemModels {
		env["USE_APT_PROTOCOLS"] = "1"
	} else {
		env["USE_APT_PROTOCOLS"] = "0"
	}
	return env
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
