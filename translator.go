// Package translator cross-compiles GLSL ES shaders.
//
// A shader written in GLSL ES 1.00, 3.00 or 3.10 is translated to one of:
//   - ESSL - GLSL ES for OpenGL ES and WebGL
//   - GLSL - desktop OpenGL, compatibility or core profile
//   - HLSL - Direct3D shader model 3 to 5.1
//   - MSL - Metal Shading Language
//
// Translate is the one-shot API:
//
//	res, err := translator.Translate(ir.StageFragment, source, translator.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Code)
//
// Programs that compile many shaders should use the compiler package
// directly and keep one compiler per stage and profile.
package translator

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/translator/compiler"
	"github.com/gogpu/translator/ir"
)

// Options configures Translate.
type Options struct {
	// Spec bounds the #version the source may declare.
	Spec compiler.Spec

	// Profile is the output language and version.
	Profile compiler.OutputProfile

	Resources compiler.Resources

	// Compile selects the passes and outputs. ObjectCode is always added.
	Compile compiler.CompileOptions

	// Logger receives the pass log at Debug level. Nil means slog.Default.
	Logger *slog.Logger
}

// DefaultOptions translates GLSL ES 3.00 shaders to GLSL 3.30 core with
// reflection.
func DefaultOptions() Options {
	return Options{
		Spec:      compiler.SpecGLES3,
		Profile:   compiler.OutputGLSL330,
		Resources: compiler.DefaultResources(),
		Compile:   compiler.ObjectCode | compiler.Variables,
	}
}

// Result is a translated shader.
type Result struct {
	Code string

	// InfoLog holds warnings and, with IntermediateTree, the tree dump.
	InfoLog string

	ShaderVersion int
	OutputVersion int

	// Reflection is nil unless the Variables option was set.
	Reflection *compiler.Reflection
}

// CompileError is returned when the shader does not compile.
type CompileError struct {
	Stage   ir.ShaderStage
	Profile compiler.OutputProfile
	InfoLog string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader failed to compile for %s:\n%s", e.Stage, e.Profile, strings.TrimRight(e.InfoLog, "\n"))
}

// The built-in table lives for the rest of the process once Translate
// has been called.
var initOnce sync.Once

// Translate compiles source for stage.
func Translate(stage ir.ShaderStage, source string, opts Options) (*Result, error) {
	initOnce.Do(func() { compiler.Initialize() })

	c, err := compiler.Construct(stage, opts.Spec, opts.Profile)
	if err != nil {
		return nil, err
	}
	defer c.Destroy()
	c.SetLogger(opts.Logger)
	if err := c.Init(opts.Resources); err != nil {
		return nil, err
	}
	if !c.Compile([]string{source}, opts.Compile|compiler.ObjectCode) {
		return nil, &CompileError{Stage: stage, Profile: opts.Profile, InfoLog: c.InfoLog()}
	}
	return &Result{
		Code:          c.ObjectCode(),
		InfoLog:       c.InfoLog(),
		ShaderVersion: c.ShaderVersion(),
		OutputVersion: c.OutputVersion(),
		Reflection:    c.Reflection(),
	}, nil
}

// StageFromPath guesses the shader stage from a file extension: .vert,
// .frag or .comp, optionally followed by .glsl or .essl.
func StageFromPath(path string) (ir.ShaderStage, error) {
	name := filepath.Base(path)
	for _, suffix := range []string{".glsl", ".essl"} {
		name = strings.TrimSuffix(name, suffix)
	}
	switch filepath.Ext(name) {
	case ".vert", ".vs":
		return ir.StageVertex, nil
	case ".frag", ".fs":
		return ir.StageFragment, nil
	case ".comp", ".cs":
		return ir.StageCompute, nil
	}
	return 0, fmt.Errorf("cannot tell the shader stage of %s", path)
}

// ParseStage parses "vertex", "fragment" or "compute" and their short
// forms.
func ParseStage(s string) (ir.ShaderStage, error) {
	switch strings.ToLower(s) {
	case "vertex", "vert", "vs":
		return ir.StageVertex, nil
	case "fragment", "frag", "fs", "pixel":
		return ir.StageFragment, nil
	case "compute", "comp", "cs":
		return ir.StageCompute, nil
	}
	return 0, fmt.Errorf("unknown shader stage %q", s)
}
