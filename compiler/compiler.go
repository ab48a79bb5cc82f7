package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/emulator"
	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
	"github.com/gogpu/translator/passes"
)

// State is the lifecycle state of a Compiler.
type State uint8

const (
	StateConstructed State = iota + 1
	StateInitialized
	StateCompiled
	StateFailed
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateInitialized:
		return "initialized"
	case StateCompiled:
		return "compiled"
	case StateFailed:
		return "failed"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Compiler translates shaders of one stage to one output profile. A
// Compiler is not safe for concurrent use; separate compilers share
// nothing mutable and may run in parallel.
type Compiler struct {
	stage   ir.ShaderStage
	spec    Spec
	profile OutputProfile
	state   State
	logger  *slog.Logger

	builtins  *ir.BuiltinTable
	arena     *ir.Arena
	emulator  *emulator.Emulator
	resources Resources

	log           infoLog
	objectCode    string
	reflection    *Reflection
	shaderVersion int
	outputVersion int
}

// Construct returns a compiler for stage, reading shaders written against
// spec and writing profile. Initialize must have been called.
func Construct(stage ir.ShaderStage, spec Spec, profile OutputProfile) (*Compiler, error) {
	if !profile.Valid() {
		return nil, fmt.Errorf("compiler: invalid output profile %d", uint8(profile))
	}
	switch stage {
	case ir.StageVertex, ir.StageFragment, ir.StageCompute:
	default:
		return nil, fmt.Errorf("compiler: invalid shader stage %d", stage)
	}
	table, err := builtinTable()
	if err != nil {
		return nil, err
	}
	return &Compiler{
		stage:    stage,
		spec:     spec,
		profile:  profile,
		state:    StateConstructed,
		logger:   slog.Default(),
		builtins: table,
		arena:    ir.NewArena(),
		emulator: newEmulator(stage, profile),
	}, nil
}

// newEmulator registers the helpers profile may need.
func newEmulator(stage ir.ShaderStage, profile OutputProfile) *emulator.Emulator {
	e := emulator.New()
	switch profile.Family() {
	case FamilyHLSL:
		emulator.InitForHLSL(e)
	case FamilyMSL:
		emulator.InitForMSL(e)
	case FamilyESSL:
		emulator.InitForGLSLWorkarounds(e)
		if stage == ir.StageFragment && profile.Version() < 300 {
			e.DefineFragmentPrecision()
		} else {
			e.DefinePrecision("highp")
		}
	default:
		emulator.InitForGLSLWorkarounds(e)
		emulator.InitForGLSLMissingFunctions(e, profile.Version())
		e.DefinePrecision("")
	}
	return e
}

// SetLogger directs the pass log of c to l. The default is slog.Default.
func (c *Compiler) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.logger = l
}

// Emulator returns the built-in function emulator of c. Helpers added to
// it are used by every following compile.
func (c *Compiler) Emulator() *emulator.Emulator { return c.emulator }

// Init sets the resources used by every following compile.
func (c *Compiler) Init(resources Resources) error {
	c.checkLive()
	if err := resources.Validate(); err != nil {
		return err
	}
	c.resources = resources
	c.state = StateInitialized
	return nil
}

// Compile translates the concatenation of sources. It returns false when
// the shader has errors; the info log then says why, and no object code
// or reflection is available.
func (c *Compiler) Compile(sources []string, options CompileOptions) bool {
	c.checkLive()
	c.reset()
	if c.state == StateConstructed {
		c.log.addError(fmt.Errorf("compiler: Init has not been called"))
		return false
	}
	c.logger.Debug("compile", "stage", c.stage, "profile", c.profile, "options", options)
	if !c.compile(sources, options) {
		c.objectCode = ""
		c.reflection = nil
		c.state = StateFailed
		c.logger.Debug("compile failed", "errors", c.log.errors)
		return false
	}
	c.state = StateCompiled
	return true
}

// reset drops the results and symbols of the previous compile.
func (c *Compiler) reset() {
	c.log.reset()
	c.objectCode = ""
	c.reflection = nil
	c.shaderVersion = 0
	c.outputVersion = 0
	c.arena.Reset()
	c.emulator.Cleanup()
}

func (c *Compiler) compile(sources []string, options CompileOptions) bool {
	res, errs := essl.Parse(sources, essl.Options{
		Stage:      c.stage,
		MaxVersion: c.spec.MaxVersion(),
		Builtins:   c.builtins,
		Arena:      c.arena,
		Extensions: c.resources.extensions(),
		Limits:     c.resources.limits(),
	})
	c.log.addDiagnostics(res.Warnings)
	c.log.addDiagnostics(errs)
	if errs.HasErrors() {
		return false
	}
	c.shaderVersion = res.Version
	tree := res.Tree

	if !checkResourceLimits(&c.log, tree, c.stage, res.Version, c.resources) {
		return false
	}

	if options.Has(ScalarizeVecAndMatConstructorArgs) {
		c.logPass("scalarize constructor arguments", passes.ScalarizeVecAndMatConstructorArgs(tree, res.Symbols))
	}
	if options.Has(InitializeUninitializedLocals) {
		c.logPass("initialize uninitialized locals", passes.InitializeUninitializedLocals(tree))
	}
	if options.Has(EmulateDrawID) {
		c.logPass("emulate gl_DrawID", passes.EmulateGLDrawID(tree, res.Symbols))
	}
	if c.removesInvariantDeclarations(options) {
		c.logPass("remove invariant declarations", passes.RemoveInvariantDeclaration(tree, c.stage))
	}
	if !c.profile.IsGLSL() || options.Has(EmulateBuiltInFunctions) {
		c.logPass("mark emulated built-ins", c.emulator.MarkBuiltInFunctionsForEmulation(tree))
	}
	if c.profile.IsGLSL() {
		c.outputVersion = passes.ResolveTargetVersion(c.profile.versionFamily(), c.profile.Version(), passes.VersionSignals{
			Stage:         c.stage,
			InvariantAll:  res.Pragma.InvariantAll,
			SourceVersion: res.Version,
		})
		c.logger.Debug("target version", "version", c.outputVersion)
	}

	if options.Has(ValidateAST) {
		verrs, err := ir.Validate(tree, res.Symbols)
		if err != nil {
			c.log.addError(err)
			return false
		}
		for _, v := range verrs {
			c.log.errorf(v.Pos, "internal: %s", v.Message)
		}
		if len(verrs) > 0 {
			return false
		}
	}
	if options.Has(Variables) {
		r, err := collectReflection(tree, c.stage, res.LocalSize)
		if err != nil {
			c.log.addError(err)
			return false
		}
		c.reflection = r
	}
	if options.Has(IntermediateTree) {
		c.log.write(ir.Dump(tree))
	}
	if options.Has(ObjectCode) {
		code, err := c.emit(res)
		if err != nil {
			c.log.addError(err)
			return false
		}
		c.objectCode = code
	}
	return true
}

// removesInvariantDeclarations reports whether invariant redeclarations
// are dropped. GLSL 4.20 relaxed invariance matching for fragment inputs;
// vertex outputs keep theirs unless options ask otherwise.
func (c *Compiler) removesInvariantDeclarations(options CompileOptions) bool {
	if c.profile.Family() != FamilyGLSLCore || c.profile.Version() < 420 {
		return false
	}
	switch c.stage {
	case ir.StageFragment:
		return true
	case ir.StageVertex:
		return options.Has(RemoveVertexInvariantDeclarations)
	}
	return false
}

func (c *Compiler) logPass(name string, changes int) {
	c.logger.Debug("pass", "name", name, "changes", changes)
}

func (c *Compiler) emit(res *essl.Result) (string, error) {
	u := &emit.Unit{
		Tree:          res.Tree,
		Symbols:       res.Symbols,
		Stage:         c.stage,
		SourceVersion: res.Version,
		Version:       c.outputVersion,
		InvariantAll:  res.Pragma.InvariantAll,
		LocalSize:     res.LocalSize,
	}
	for name, b := range res.Extensions {
		if b.Enabled() {
			u.Extensions = append(u.Extensions, emit.Extension{Name: name, Behavior: b.String()})
		}
	}
	emit.SortExtensions(u.Extensions)
	if !c.emulator.IsOutputEmpty() {
		u.Emulator = c.emulator
	}
	var sb strings.Builder
	if err := c.profile.emitter().Emit(&sb, u); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Destroy releases the symbols of c. Any later use panics.
func (c *Compiler) Destroy() {
	if c.state == StateDestroyed {
		return
	}
	c.arena.Release()
	c.state = StateDestroyed
}

func (c *Compiler) checkLive() {
	if c.state == StateDestroyed {
		panic(ir.InternalErrorf("use of destroyed compiler"))
	}
}

// State returns the lifecycle state.
func (c *Compiler) State() State { return c.state }

// Stage returns the shader stage c compiles.
func (c *Compiler) Stage() ir.ShaderStage { return c.stage }

// Profile returns the output profile.
func (c *Compiler) Profile() OutputProfile { return c.profile }

// Resources returns the resources set by Init.
func (c *Compiler) Resources() Resources { return c.resources }

// InfoLog returns the diagnostics of the last compile.
func (c *Compiler) InfoLog() string { return c.log.String() }

// ObjectCode returns the translated source of the last successful
// compile with the ObjectCode option.
func (c *Compiler) ObjectCode() string { return c.objectCode }

// ShaderVersion returns the #version of the last compiled shader, e.g.
// 100 or 300.
func (c *Compiler) ShaderVersion() int { return c.shaderVersion }

// OutputVersion returns the #version of GLSL or ESSL object code. It is
// zero for other profiles.
func (c *Compiler) OutputVersion() int { return c.outputVersion }

// Reflection returns the interface variables of the last successful
// compile with the Variables option, or nil.
func (c *Compiler) Reflection() *Reflection { return c.reflection }

// Uniforms returns the uniforms of the last compile.
func (c *Compiler) Uniforms() []Variable {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.Uniforms
}

// Attributes returns the vertex attributes of the last compile.
func (c *Compiler) Attributes() []Variable {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.Attributes
}

// InputVaryings returns the fragment inputs of the last compile.
func (c *Compiler) InputVaryings() []Variable {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.InputVaryings
}

// OutputVaryings returns the vertex outputs of the last compile.
func (c *Compiler) OutputVaryings() []Variable {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.OutputVaryings
}

// OutputVariables returns the fragment outputs of the last compile.
func (c *Compiler) OutputVariables() []Variable {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.OutputVariables
}

// InterfaceBlocks returns the interface blocks of the last compile. The
// front end rejects interface blocks, so it is always empty.
func (c *Compiler) InterfaceBlocks() []InterfaceBlock {
	if c.reflection == nil {
		return nil
	}
	return c.reflection.InterfaceBlocks
}
