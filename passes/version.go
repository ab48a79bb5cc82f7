package passes

import "github.com/gogpu/translator/ir"

// VersionFamily is the language family of a GLSL-like output.
type VersionFamily uint8

const (
	// FamilyGLSLCompatibility is desktop GLSL without a #version profile
	// requirement; it starts at 1.10.
	FamilyGLSLCompatibility VersionFamily = iota
	// FamilyGLSLCore is desktop GLSL with a numbered core profile.
	FamilyGLSLCore
	// FamilyESSL is OpenGL ES GLSL.
	FamilyESSL
)

// Versions the resolver raises to.
const (
	GLSLVersion110 = 110
	GLSLVersion120 = 120
	GLSLVersion130 = 130
	GLSLVersion430 = 430
	ESSLVersion310 = 310
)

// VersionSignals are the facts of a parsed shader that constrain its
// output version.
type VersionSignals struct {
	Stage ir.ShaderStage
	// InvariantAll is set by "#pragma STDGL invariant(all)".
	InvariantAll bool
	// SourceVersion is the ESSL version of the input.
	SourceVersion int
}

// TargetVersion accumulates the minimum output version. It only ever
// grows.
type TargetVersion struct {
	version int
}

// EnsureVersion raises the version to at least v.
func (tv *TargetVersion) EnsureVersion(v int) {
	if v > tv.version {
		tv.version = v
	}
}

// Version returns the current minimum.
func (tv TargetVersion) Version() int { return tv.version }

// ResolveTargetVersion returns the lowest version of family, at least
// profileVersion, that can express a shader with the given signals.
// profileVersion is ignored for FamilyGLSLCompatibility.
func ResolveTargetVersion(family VersionFamily, profileVersion int, s VersionSignals) int {
	var tv TargetVersion
	switch family {
	case FamilyGLSLCompatibility:
		tv.EnsureVersion(GLSLVersion110)
	default:
		tv.EnsureVersion(profileVersion)
	}

	if family == FamilyESSL {
		if s.Stage == ir.StageCompute {
			tv.EnsureVersion(ESSLVersion310)
		}
		tv.EnsureVersion(s.SourceVersion)
		return tv.Version()
	}

	if s.InvariantAll {
		tv.EnsureVersion(GLSLVersion120)
	}
	if s.SourceVersion >= 300 {
		tv.EnsureVersion(GLSLVersion130)
	}
	if s.Stage == ir.StageCompute {
		tv.EnsureVersion(GLSLVersion430)
	}
	return tv.Version()
}
