package emulator

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/ir"
)

var components = [4]string{"x", "y", "z", "w"}

func genType(n uint8) ir.Type {
	if n == 1 {
		return ir.NewScalar(ir.TypeFloat)
	}
	return ir.NewVector(ir.TypeFloat, n)
}

// glslName spells a float vector or bool vector in GLSL.
func glslName(b ir.BasicType, n uint8) string {
	switch {
	case n == 1 && b == ir.TypeBool:
		return "bool"
	case n == 1:
		return "float"
	case b == ir.TypeBool:
		return fmt.Sprintf("bvec%d", n)
	default:
		return fmt.Sprintf("vec%d", n)
	}
}

// shaderModelName spells a float vector the way HLSL and MSL do.
func shaderModelName(n uint8) string {
	if n == 1 {
		return "float"
	}
	return fmt.Sprintf("float%d", n)
}

// perComponent builds "<ctor>(f(a.x, b.x), f(a.y, b.y), ...)".
func perComponent(ctor, fn string, n uint8, args ...string) string {
	calls := make([]string, n)
	for i := uint8(0); i < n; i++ {
		parts := make([]string, len(args))
		for j, a := range args {
			parts[j] = a + "." + components[i]
		}
		calls[i] = fmt.Sprintf("%s(%s)", fn, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s(%s)", ctor, strings.Join(calls, ", "))
}

// InitForGLSLWorkarounds registers helpers for desktop GLSL drivers with
// broken isnan, isinf and two-argument atan.
func InitForGLSLWorkarounds(e *Emulator) {
	const p = "emu_precision "

	e.AddFunction(IsDependency, NewKey(ir.OpIsnan, genType(1)),
		"bool isnan_emu("+p+"float x)\n"+
			"{\n"+
			"    return (x > 0.0 || x < 0.0) ? false : x != 0.0;\n"+
			"}\n")
	for n := uint8(2); n <= 4; n++ {
		e.AddFunction(IsDependent, NewKey(ir.OpIsnan, genType(n)), fmt.Sprintf(
			"%s isnan_emu(%s%s x)\n{\n    return %s;\n}\n",
			glslName(ir.TypeBool, n), p, glslName(ir.TypeFloat, n),
			perComponent(glslName(ir.TypeBool, n), "isnan_emu", n, "x")))
	}

	isinf := NewKey(ir.OpIsinf, genType(1))
	e.AddEmulatedFunction(isinf,
		"bool isinf_emu("+p+"float x)\n"+
			"{\n"+
			"    return x != 0.0 && x * 0.5 == x;\n"+
			"}\n")
	for n := uint8(2); n <= 4; n++ {
		e.AddEmulatedFunctionWithDependency(isinf, NewKey(ir.OpIsinf, genType(n)), fmt.Sprintf(
			"%s isinf_emu(%s%s x)\n{\n    return %s;\n}\n",
			glslName(ir.TypeBool, n), p, glslName(ir.TypeFloat, n),
			perComponent(glslName(ir.TypeBool, n), "isinf_emu", n, "x")))
	}

	f := genType(1)
	e.AddFunction(IsDependency, NewKey(ir.OpAtan, f, f),
		p+"float atan_emu("+p+"float y, "+p+"float x)\n"+
			"{\n"+
			"    if (x > 0.0) return atan(y / x);\n"+
			"    else if (x < 0.0 && y >= 0.0) return atan(y / x) + 3.14159265;\n"+
			"    else if (x < 0.0 && y < 0.0) return atan(y / x) - 3.14159265;\n"+
			"    else return 1.57079632 * sign(y);\n"+
			"}\n")
	for n := uint8(2); n <= 4; n++ {
		v := genType(n)
		name := glslName(ir.TypeFloat, n)
		e.AddFunction(IsDependent, NewKey(ir.OpAtan, v, v), fmt.Sprintf(
			"%s%s atan_emu(%s%s y, %s%s x)\n{\n    return %s;\n}\n",
			p, name, p, name, p, name,
			perComponent(name, "atan_emu", n, "y", "x")))
	}
}

// InitForGLSLMissingFunctions registers helpers for ESSL 3 built-ins that
// desktop GLSL below targetVersion lacks.
func InitForGLSLMissingFunctions(e *Emulator, targetVersion int) {
	if targetVersion >= 150 {
		return
	}
	const p = "emu_precision "

	det2 := NewKey(ir.OpDeterminant, ir.NewMatrix(2, 2))
	e.AddEmulatedFunction(det2,
		p+"float determinant_emu("+p+"mat2 m)\n"+
			"{\n"+
			"    return m[0][0] * m[1][1] - m[0][1] * m[1][0];\n"+
			"}\n")
	det3 := NewKey(ir.OpDeterminant, ir.NewMatrix(3, 3))
	e.AddEmulatedFunction(det3,
		p+"float determinant_emu("+p+"mat3 m)\n"+
			"{\n"+
			"    return m[0][0] * (m[1][1] * m[2][2] - m[2][1] * m[1][2])\n"+
			"         - m[1][0] * (m[0][1] * m[2][2] - m[2][1] * m[0][2])\n"+
			"         + m[2][0] * (m[0][1] * m[1][2] - m[1][1] * m[0][2]);\n"+
			"}\n")
	e.AddEmulatedFunction(NewKey(ir.OpDeterminant, ir.NewMatrix(4, 4)),
		p+"float determinant_emu("+p+"mat4 m)\n"+
			"{\n"+
			"    "+p+"float s0 = m[0][0] * m[1][1] - m[1][0] * m[0][1];\n"+
			"    "+p+"float s1 = m[0][0] * m[1][2] - m[1][0] * m[0][2];\n"+
			"    "+p+"float s2 = m[0][0] * m[1][3] - m[1][0] * m[0][3];\n"+
			"    "+p+"float s3 = m[0][1] * m[1][2] - m[1][1] * m[0][2];\n"+
			"    "+p+"float s4 = m[0][1] * m[1][3] - m[1][1] * m[0][3];\n"+
			"    "+p+"float s5 = m[0][2] * m[1][3] - m[1][2] * m[0][3];\n"+
			"    "+p+"float c5 = m[2][2] * m[3][3] - m[3][2] * m[2][3];\n"+
			"    "+p+"float c4 = m[2][1] * m[3][3] - m[3][1] * m[2][3];\n"+
			"    "+p+"float c3 = m[2][1] * m[3][2] - m[3][1] * m[2][2];\n"+
			"    "+p+"float c2 = m[2][0] * m[3][3] - m[3][0] * m[2][3];\n"+
			"    "+p+"float c1 = m[2][0] * m[3][2] - m[3][0] * m[2][2];\n"+
			"    "+p+"float c0 = m[2][0] * m[3][1] - m[3][0] * m[2][1];\n"+
			"    return s0 * c5 - s1 * c4 + s2 * c3 + s3 * c2 - s4 * c1 + s5 * c0;\n"+
			"}\n")

	e.AddEmulatedFunctionWithDependency(det2, NewKey(ir.OpInverse, ir.NewMatrix(2, 2)),
		p+"mat2 inverse_emu("+p+"mat2 m)\n"+
			"{\n"+
			"    return mat2(m[1][1], -m[0][1], -m[1][0], m[0][0]) / determinant_emu(m);\n"+
			"}\n")
	e.AddEmulatedFunctionWithDependency(det3, NewKey(ir.OpInverse, ir.NewMatrix(3, 3)),
		p+"mat3 inverse_emu("+p+"mat3 m)\n"+
			"{\n"+
			"    return transpose(mat3(cross(m[1], m[2]), cross(m[2], m[0]), cross(m[0], m[1]))) / determinant_emu(m);\n"+
			"}\n")
}

// modText is GLSL mod in HLSL/MSL syntax; their fmod truncates instead
// of flooring.
func modText(x, y string) string {
	return fmt.Sprintf("%s mod_emu(%s x, %s y)\n{\n    return x - y * floor(x / y);\n}\n", x, x, y)
}

func atan2Text(atan2 string) string {
	return "float atan_emu(float y, float x)\n" +
		"{\n" +
		"    if (x == 0.0 && y == 0.0) x = 1.0;\n" +
		"    return " + atan2 + "(y, x);\n" +
		"}\n"
}

func registerShaderModelCommon(e *Emulator, atan2 string) {
	for n := uint8(1); n <= 4; n++ {
		g := genType(n)
		name := shaderModelName(n)
		e.AddEmulatedFunction(NewKey(ir.OpMod, g, g), modText(name, name))
		if n > 1 {
			e.AddEmulatedFunction(NewKey(ir.OpMod, g, genType(1)), modText(name, "float"))
		}
	}

	f := genType(1)
	e.AddFunction(IsDependency, NewKey(ir.OpAtan, f, f), atan2Text(atan2))
	for n := uint8(2); n <= 4; n++ {
		v := genType(n)
		name := shaderModelName(n)
		e.AddFunction(IsDependent, NewKey(ir.OpAtan, v, v), fmt.Sprintf(
			"%s atan_emu(%s y, %s x)\n{\n    return %s;\n}\n",
			name, name, name, perComponent(name, "atan_emu", n, "y", "x")))
	}
}

// InitForHLSL registers helpers for GLSL built-ins whose HLSL intrinsics
// differ: mod, atan(y, x), and the scalar forms of reflect and refract.
func InitForHLSL(e *Emulator) {
	registerShaderModelCommon(e, "atan2")
	registerScalarReflection(e)
}

// InitForMSL registers helpers for GLSL built-ins whose Metal functions
// differ: mod, atan(y, x), and the scalar forms of reflect and refract.
func InitForMSL(e *Emulator) {
	registerShaderModelCommon(e, "metal::atan2")
	registerScalarReflection(e)
}

// registerScalarReflection covers reflect and refract on floats, which
// HLSL and Metal only define for vectors.
func registerScalarReflection(e *Emulator) {
	f := genType(1)
	e.AddEmulatedFunction(NewKey(ir.OpReflect, f, f),
		"float reflect_emu(float I, float N)\n"+
			"{\n"+
			"    return I - 2.0 * N * I * N;\n"+
			"}\n")
	e.AddEmulatedFunction(NewKey(ir.OpRefract, f, f, f),
		"float refract_emu(float I, float N, float eta)\n"+
			"{\n"+
			"    float k = 1.0 - eta * eta * (1.0 - N * I * N * I);\n"+
			"    if (k < 0.0) return 0.0;\n"+
			"    return eta * I - (eta * N * I + sqrt(k)) * N;\n"+
			"}\n")
}
