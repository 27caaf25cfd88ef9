package command

import (
	"fmt"
	"path"
	"sort"

	"go.uber.org/zap"

	"ivyharness/internal/roles"
	"ivyharness/internal/tmpl"
)

// toolDir is the container install location of the verification tool.
const toolDir = "/opt/ivyharness"

// includeDir is where the tool expects model include files at compile time.
const includeDir = "/usr/local/lib/verifier/include/1.7"

// Generator produces the phase command sequences for one run. All output is
// a pure function of the context; repeated generation is byte-identical.
type Generator struct {
	ctx Context
	log *zap.Logger
}

// NewGenerator creates a generator for the given resolution context.
func NewGenerator(ctx Context, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{ctx: ctx, log: log}
}

// Populate fills the pipeline with every phase's commands.
func (g *Generator) Populate(p *Pipeline) {
	g.PreCompile(p)
	g.Compile(p)
	g.PostCompile(p)
	g.PreRun(p)
	g.PostRun(p)
}

// PreCompile emits environment setup and build-directory cleaning.
func (g *Generator) PreCompile(p *Pipeline) {
	targetInfo := ""
	if t := g.ctx.PrimaryTarget(); t != "" {
		targetInfo = fmt.Sprintf(" (target: %s)", t)
	}

	p.AddText(PreCompile, "echo '# setup log' > /app/logs/pre_compile/setup.log")
	p.AddText(PreCompile, fmt.Sprintf(
		"echo \"service %s using network-aware placeholder resolution%s\" >> /app/logs/pre_compile/setup.log",
		g.ctx.ServiceName, targetInfo))
	p.AddText(PreCompile, fmt.Sprintf(
		"find '%s/%s/' -maxdepth 1 -type f -delete 2>/dev/null || true",
		g.ctx.ModelPath(), g.ctx.BuildDir()))
}

// Compile emits tool update, model installation, and test compilation.
// Every non-diagnostic command here is critical: a failed compile phase
// cannot produce a runnable test binary.
func (g *Generator) Compile(p *Pipeline) {
	for _, cmd := range g.toolUpdateCommands() {
		p.AddText(Compile, cmd)
	}
	if g.ctx.Protocol == "quic" || g.ctx.Protocol == "apt" {
		for _, cmd := range g.tlsSetupCommands() {
			p.AddText(Compile, cmd)
		}
	}
	for _, cmd := range g.modelSetupCommands() {
		p.AddText(Compile, cmd)
	}
	for _, cmd := range g.testCompileCommands() {
		p.AddText(Compile, cmd)
	}
	p.AddText(Compile, "touch /app/sync_logs/ready.log")
}

// PostCompile records the compiled binary inventory for diagnostics.
func (g *Generator) PostCompile(p *Pipeline) {
	p.AddText(PostCompile, fmt.Sprintf(
		"ls -la '%s/%s/' >> /app/logs/post_compile/inventory.log 2>&1",
		g.ctx.ModelPath(), g.ctx.BuildDir()))
}

// PreRun emits run-phase preparation: log directories and exported build
// environment.
func (g *Generator) PreRun(p *Pipeline) {
	p.AddText(PreRun, "mkdir -p /app/logs/run /app/logs/artifacts")
	env := g.ctx.BuildEnv()
	for _, key := range sortedKeys(env) {
		rec := NewRecord(fmt.Sprintf("%s=%s", key, env[key]), PreRun)
		rec.Description = "export build environment"
		p.Add(PreRun, rec)
	}
}

// PostRun emits artifact preservation and binary cleanup.
func (g *Generator) PostRun(p *Pipeline) {
	binPath := path.Join(g.ctx.ModelPath(), g.ctx.BuildDir(), g.ctx.TestName)
	p.AddText(PostRun, fmt.Sprintf("cp '%s' '/app/logs/artifacts/%s'", binPath, g.ctx.TestName))
	p.AddText(PostRun, fmt.Sprintf(
		"find '%s' -name '%s*' -type f -delete 2>/dev/null || true",
		path.Dir(binPath), g.ctx.TestName))
}

// Deployment renders the run-phase deployment command: template selection by
// opposing role, role-placeholder substitution, then the mandatory lexical
// gate. A command that fails validation is never returned.
func (g *Generator) Deployment() (string, error) {
	templateName := string(roles.Opposite(g.ctx.Role)) + "_command"

	content, err := tmpl.Load(templateName, g.ctx.Workdir)
	if err != nil {
		return "", fmt.Errorf("load deployment template: %w", err)
	}

	vars := make(tmpl.Vars, len(g.ctx.Params))
	for k, v := range roles.SubstituteAll(g.ctx.Params, g.ctx.Mapping) {
		vars[k] = v
	}

	rendered, err := tmpl.Render(content, vars)
	if err != nil {
		return "", fmt.Errorf("render deployment command: %w", err)
	}
	rendered = roles.Substitute(rendered, g.ctx.Mapping)

	ok, cmd, err := Validate(rendered)
	if !ok {
		g.log.Error("deployment command rejected by validator",
			zap.String("command", rendered), zap.Error(err))
		return "", fmt.Errorf("deployment command invalid: %w", err)
	}
	return cmd, nil
}

// toolUpdateCommands reinstalls the verification tool and refreshes its
// include tree.
func (g *Generator) toolUpdateCommands() []string {
	return []string{
		"echo 'Updating verification tool...' >> /app/logs/compile/setup.log",
		fmt.Sprintf("cd %s && sudo python3 setup.py install >> /app/logs/compile/setup.log 2>&1", toolDir),
		fmt.Sprintf("cd %s && cp lib/libz3.so submodules/z3/build/python/z3 >> /app/logs/compile/setup.log 2>&1 || true", toolDir),
		fmt.Sprintf("find '%s/include/1.7/' -type f -name '*.ivy' -exec cp {} '%s/' ';' >> /app/logs/compile/setup.log 2>&1", toolDir, includeDir),
	}
}

// tlsSetupCommands copies the TLS library artifacts the QUIC models link
// against. Building those libraries is out of scope; they are assumed
// present in the image.
func (g *Generator) tlsSetupCommands() []string {
	cmds := []string{
		"echo 'Copying TLS libraries...' >> /app/logs/compile/setup.log",
		fmt.Sprintf("cp -f -a '/opt/picotls/'*.a '%s/../../lib/'", includeDir),
		fmt.Sprintf("cp -f '/opt/picotls/include/picotls.h' '%s/../picotls.h'", includeDir),
	}
	serDeser := path.Join(g.ctx.ModelPath(), "quic_utils", "quic_ser_deser.h")
	if g.ctx.UseSystemModels {
		serDeser = path.Join(g.ctx.ModelPath(), "apt_protocols", "quic", "quic_utils", "quic_ser_deser.h")
	}
	cmds = append(cmds, fmt.Sprintf("cp -f '%s' '%s/'", serDeser, includeDir))
	return cmds
}

// modelSetupCommands installs the protocol model sources into the tool's
// include path.
func (g *Generator) modelSetupCommands() []string {
	return []string{
		"echo 'Setting up protocol model...' >> /app/logs/compile/setup.log",
		fmt.Sprintf("find '%s' -type f -name '*.ivy' -exec cp -f {} '%s/' ';'", g.ctx.ModelPath(), includeDir),
		fmt.Sprintf("ls -l '%s/' >> /app/logs/compile/setup.log", includeDir),
	}
}

// testCompileCommands compiles the named test and records the outcome in
// compilation_status.txt, which the output classifier reads later.
func (g *Generator) testCompileCommands() []string {
	buildPath := path.Join(g.ctx.ModelPath(), g.ctx.BuildDir())
	cppFlags := ""
	if flags := g.ctx.BuildMode.CPPFlags(); flags != "" {
		cppFlags = fmt.Sprintf("CXXFLAGS='%s' ", flags)
	}

	return []string{
		fmt.Sprintf("echo 'Compiling test %s...' >> /app/logs/compile/compile.log", g.ctx.TestName),
		fmt.Sprintf("mkdir -p '%s'", buildPath),
		fmt.Sprintf(
			"cd %s && %sverifierc show_compiled=false trace=false target=test test_iters=%d %s.ivy >> /app/logs/compile/compile.log 2>&1",
			includeDir, cppFlags, g.ctx.InternalIters, g.ctx.TestName),
		"COMPILE_RESULT=$?",
		"(if [ $COMPILE_RESULT -eq 0 ]; then echo 'Compilation succeeded'; else echo \"Compilation failed with code $COMPILE_RESULT\"; fi) > /app/logs/compile/compilation_status.txt",
		fmt.Sprintf("cp '%s/%s' '%s/' >> /app/logs/compile/compile.log 2>&1", includeDir, g.ctx.TestName, buildPath),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
