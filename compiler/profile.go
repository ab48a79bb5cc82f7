package compiler

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/emit"
	"github.com/gogpu/translator/glsl"
	"github.com/gogpu/translator/hlsl"
	"github.com/gogpu/translator/msl"
	"github.com/gogpu/translator/passes"
)

// Family is the language family of an output profile.
type Family uint8

const (
	FamilyESSL Family = iota
	FamilyGLSLCompatibility
	FamilyGLSLCore
	FamilyHLSL
	FamilyMSL
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyESSL:
		return "essl"
	case FamilyGLSLCompatibility:
		return "glsl-compatibility"
	case FamilyGLSLCore:
		return "glsl-core"
	case FamilyHLSL:
		return "hlsl"
	case FamilyMSL:
		return "msl"
	}
	return fmt.Sprintf("Family(%d)", uint8(f))
}

// OutputProfile selects the target language and version of a compiler.
type OutputProfile uint8

// Output profiles.
const (
	OutputESSL100 OutputProfile = iota
	OutputESSL300
	OutputESSL310
	OutputGLSLCompatibility
	OutputGLSL130
	OutputGLSL140
	OutputGLSL150
	OutputGLSL330
	OutputGLSL400
	OutputGLSL410
	OutputGLSL420
	OutputGLSL430
	OutputGLSL440
	OutputGLSL450
	OutputGLSL460
	OutputHLSL3_0
	OutputHLSL4_1
	OutputHLSL5_0
	OutputHLSL5_1
	OutputMSL
)

type profileInfo struct {
	name    string
	family  Family
	version int
	sm      hlsl.ShaderModel
}

var profileTable = [...]profileInfo{
	OutputESSL100:           {name: "essl100", family: FamilyESSL, version: 100},
	OutputESSL300:           {name: "essl300", family: FamilyESSL, version: 300},
	OutputESSL310:           {name: "essl310", family: FamilyESSL, version: 310},
	OutputGLSLCompatibility: {name: "glsl", family: FamilyGLSLCompatibility, version: 110},
	OutputGLSL130:           {name: "glsl130", family: FamilyGLSLCore, version: 130},
	OutputGLSL140:           {name: "glsl140", family: FamilyGLSLCore, version: 140},
	OutputGLSL150:           {name: "glsl150", family: FamilyGLSLCore, version: 150},
	OutputGLSL330:           {name: "glsl330", family: FamilyGLSLCore, version: 330},
	OutputGLSL400:           {name: "glsl400", family: FamilyGLSLCore, version: 400},
	OutputGLSL410:           {name: "glsl410", family: FamilyGLSLCore, version: 410},
	OutputGLSL420:           {name: "glsl420", family: FamilyGLSLCore, version: 420},
	OutputGLSL430:           {name: "glsl430", family: FamilyGLSLCore, version: 430},
	OutputGLSL440:           {name: "glsl440", family: FamilyGLSLCore, version: 440},
	OutputGLSL450:           {name: "glsl450", family: FamilyGLSLCore, version: 450},
	OutputGLSL460:           {name: "glsl460", family: FamilyGLSLCore, version: 460},
	OutputHLSL3_0:           {name: "hlsl3", family: FamilyHLSL, sm: hlsl.ShaderModel3_0},
	OutputHLSL4_1:           {name: "hlsl4.1", family: FamilyHLSL, sm: hlsl.ShaderModel4_1},
	OutputHLSL5_0:           {name: "hlsl5", family: FamilyHLSL, sm: hlsl.ShaderModel5_0},
	OutputHLSL5_1:           {name: "hlsl5.1", family: FamilyHLSL, sm: hlsl.ShaderModel5_1},
	OutputMSL:               {name: "msl", family: FamilyMSL},
}

func (p OutputProfile) info() profileInfo {
	if int(p) >= len(profileTable) {
		return profileInfo{name: fmt.Sprintf("OutputProfile(%d)", uint8(p))}
	}
	return profileTable[p]
}

// Valid reports whether p names a known profile.
func (p OutputProfile) Valid() bool { return int(p) < len(profileTable) }

// String returns the name ParseOutputProfile accepts.
func (p OutputProfile) String() string { return p.info().name }

// Family returns the language family of p.
func (p OutputProfile) Family() Family { return p.info().family }

// Version returns the #version number of a GLSL or ESSL profile and zero
// for the other families.
func (p OutputProfile) Version() int { return p.info().version }

// IsGLSL reports whether p writes GLSL or ESSL.
func (p OutputProfile) IsGLSL() bool {
	f := p.Family()
	return f == FamilyESSL || f == FamilyGLSLCompatibility || f == FamilyGLSLCore
}

// Profiles returns every output profile in declaration order.
func Profiles() []OutputProfile {
	ps := make([]OutputProfile, len(profileTable))
	for i := range ps {
		ps[i] = OutputProfile(i)
	}
	return ps
}

// ParseOutputProfile parses a profile name such as "essl300", "glsl450",
// "hlsl5" or "msl". Names are case-insensitive; "hlsl4_1" and "hlsl4.1"
// are the same profile.
func ParseOutputProfile(s string) (OutputProfile, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", ".")
	switch name {
	case "hlsl3.0":
		name = "hlsl3"
	case "hlsl5.0":
		name = "hlsl5"
	case "glsl110", "glsl-compatibility":
		name = "glsl"
	}
	for i, info := range profileTable {
		if info.name == name {
			return OutputProfile(i), nil
		}
	}
	return 0, fmt.Errorf("compiler: unknown output profile %q", s)
}

// versionFamily maps a GLSL-like profile to the family the target
// version resolver works with.
func (p OutputProfile) versionFamily() passes.VersionFamily {
	switch p.Family() {
	case FamilyESSL:
		return passes.FamilyESSL
	case FamilyGLSLCore:
		return passes.FamilyGLSLCore
	}
	return passes.FamilyGLSLCompatibility
}

// emitter returns the emitter that writes p.
func (p OutputProfile) emitter() emit.Emitter {
	info := p.info()
	switch info.family {
	case FamilyESSL:
		return glsl.NewEmitter(glsl.Options{ES: true})
	case FamilyGLSLCompatibility:
		return glsl.NewEmitter(glsl.Options{})
	case FamilyGLSLCore:
		return glsl.NewEmitter(glsl.Options{Core: true})
	case FamilyHLSL:
		return hlsl.NewEmitter(hlsl.Options{ShaderModel: info.sm})
	}
	return msl.NewEmitter(msl.DefaultOptions())
}

// Spec is the API a shader is written against. It bounds the #version a
// shader may declare.
type Spec uint8

const (
	SpecGLES2 Spec = iota
	SpecGLES3
	SpecGLES31
	SpecWebGL
	SpecWebGL2
)

// String returns the spec name.
func (s Spec) String() string {
	switch s {
	case SpecGLES2:
		return "gles2"
	case SpecGLES3:
		return "gles3"
	case SpecGLES31:
		return "gles31"
	case SpecWebGL:
		return "webgl"
	case SpecWebGL2:
		return "webgl2"
	}
	return fmt.Sprintf("Spec(%d)", uint8(s))
}

// ParseSpec parses the names String returns.
func ParseSpec(s string) (Spec, error) {
	for _, spec := range []Spec{SpecGLES2, SpecGLES3, SpecGLES31, SpecWebGL, SpecWebGL2} {
		if strings.EqualFold(s, spec.String()) {
			return spec, nil
		}
	}
	return 0, fmt.Errorf("compiler: unknown shader spec %q", s)
}

// MaxVersion returns the highest ESSL version the spec accepts.
func (s Spec) MaxVersion() int {
	switch s {
	case SpecGLES3, SpecWebGL2:
		return 300
	case SpecGLES31:
		return 310
	}
	return 100
}
