package compiler

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// Resources are the capabilities of the implementation a shader is
// compiled for. A compiler keeps the resources passed to Init unchanged
// for every compile.
//
// Resources load from TOML; keys are the toml tags below:
//
//	OES_standard_derivatives = true
//	MaxVertexAttribs = 16
//	MaxDrawBuffers = 8
type Resources struct {
	// Extensions the implementation supports.
	OESStandardDerivatives   bool `toml:"OES_standard_derivatives"`
	OESEGLImageExternal      bool `toml:"OES_EGL_image_external"`
	OESEGLImageExternalESSL3 bool `toml:"OES_EGL_image_external_essl3"`
	EXTDrawBuffers           bool `toml:"EXT_draw_buffers"`
	EXTFragDepth             bool `toml:"EXT_frag_depth"`
	ANGLEMultiDraw           bool `toml:"ANGLE_multi_draw"`

	// Limits. The names after "Max" match the gl_Max* built-in constants.
	MaxVertexAttribs             int `toml:"MaxVertexAttribs"`
	MaxVertexUniformVectors      int `toml:"MaxVertexUniformVectors"`
	MaxVaryingVectors            int `toml:"MaxVaryingVectors"`
	MaxVertexTextureImageUnits   int `toml:"MaxVertexTextureImageUnits"`
	MaxCombinedTextureImageUnits int `toml:"MaxCombinedTextureImageUnits"`
	MaxTextureImageUnits         int `toml:"MaxTextureImageUnits"`
	MaxFragmentUniformVectors    int `toml:"MaxFragmentUniformVectors"`
	MaxDrawBuffers               int `toml:"MaxDrawBuffers"`
	MaxVertexOutputVectors       int `toml:"MaxVertexOutputVectors"`
	MaxFragmentInputVectors      int `toml:"MaxFragmentInputVectors"`
	MinProgramTexelOffset        int `toml:"MinProgramTexelOffset"`
	MaxProgramTexelOffset        int `toml:"MaxProgramTexelOffset"`

	MaxComputeUniformComponents     int `toml:"MaxComputeUniformComponents"`
	MaxComputeTextureImageUnits     int `toml:"MaxComputeTextureImageUnits"`
	MaxComputeWorkGroupInvocations  int `toml:"MaxComputeWorkGroupInvocations"`
	MaxComputeSharedMemorySizeBytes int `toml:"MaxComputeSharedMemorySize"`
}

// DefaultResources returns the minimum limits of OpenGL ES 3.1 with no
// extensions.
func DefaultResources() Resources {
	return Resources{
		MaxVertexAttribs:             16,
		MaxVertexUniformVectors:      256,
		MaxVaryingVectors:            15,
		MaxVertexTextureImageUnits:   16,
		MaxCombinedTextureImageUnits: 48,
		MaxTextureImageUnits:         16,
		MaxFragmentUniformVectors:    224,
		MaxDrawBuffers:               4,
		MaxVertexOutputVectors:       16,
		MaxFragmentInputVectors:      15,
		MinProgramTexelOffset:        -8,
		MaxProgramTexelOffset:        7,

		MaxComputeUniformComponents:     512,
		MaxComputeTextureImageUnits:     16,
		MaxComputeWorkGroupInvocations:  128,
		MaxComputeSharedMemorySizeBytes: 16384,
	}
}

// DecodeResources reads resources from TOML text. Keys that are absent
// keep their DefaultResources value; unknown keys are an error.
func DecodeResources(text string) (Resources, error) {
	r := DefaultResources()
	meta, err := toml.Decode(text, &r)
	if err != nil {
		return Resources{}, fmt.Errorf("compiler: failed to parse resources: %w", err)
	}
	if err := checkDecoded(meta); err != nil {
		return Resources{}, err
	}
	return r, r.Validate()
}

// LoadResources reads resources from a TOML file.
func LoadResources(path string) (Resources, error) {
	r := DefaultResources()
	meta, err := toml.DecodeFile(path, &r)
	if err != nil {
		return Resources{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := checkDecoded(meta); err != nil {
		return Resources{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Resources{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func checkDecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("compiler: unknown resource keys: %s", strings.Join(keys, ", "))
}

// Validate checks that every limit is representable in a shader and that
// no maximum is negative.
func (r Resources) Validate() error {
	for name, v := range r.limitValues() {
		if _, err := safecast.Conv[int32](v); err != nil {
			return fmt.Errorf("compiler: resource %s: %w", name, err)
		}
		if v < 0 && strings.HasPrefix(name, "Max") {
			return fmt.Errorf("compiler: resource %s is negative: %d", name, v)
		}
	}
	if r.MinProgramTexelOffset > r.MaxProgramTexelOffset {
		return fmt.Errorf("compiler: MinProgramTexelOffset %d exceeds MaxProgramTexelOffset %d",
			r.MinProgramTexelOffset, r.MaxProgramTexelOffset)
	}
	return nil
}

// limitValues returns the integer fields by toml key.
func (r Resources) limitValues() map[string]int {
	m := make(map[string]int)
	v := reflect.ValueOf(r)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() != reflect.Int {
			continue
		}
		m[f.Tag.Get("toml")] = int(v.Field(i).Int())
	}
	return m
}

// limits returns the values of the gl_Max* and gl_Min* built-in
// constants.
func (r Resources) limits() map[string]int {
	m := make(map[string]int)
	for name, v := range r.limitValues() {
		m["gl_"+name] = v
	}
	return m
}

// extensions returns the supported extensions by GLSL name.
func (r Resources) extensions() map[string]bool {
	m := make(map[string]bool)
	add := func(on bool, names ...string) {
		if on {
			for _, n := range names {
				m[n] = true
			}
		}
	}
	add(r.OESStandardDerivatives, "GL_OES_standard_derivatives")
	add(r.OESEGLImageExternal, "GL_OES_EGL_image_external")
	add(r.OESEGLImageExternalESSL3, "GL_OES_EGL_image_external_essl3")
	add(r.EXTDrawBuffers, "GL_EXT_draw_buffers")
	add(r.EXTFragDepth, "GL_EXT_frag_depth")
	add(r.ANGLEMultiDraw, "GL_ANGLE_multi_draw")
	return m
}

// ExtensionNames returns the GLSL names of the enabled extensions, sorted.
func (r Resources) ExtensionNames() []string {
	exts := r.extensions()
	names := make([]string, 0, len(exts))
	for n := range exts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
