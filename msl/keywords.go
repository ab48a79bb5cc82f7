package msl

import "strings"

// reservedLists hold the C++14 keywords, the Metal address spaces and
// attributes, and the Metal type names, separated by white space.
var reservedLists = []string{
	// C++
	`alignas alignof and and_eq asm auto bitand bitor bool break case catch char char16_t
	char32_t class compl const const_cast constexpr continue decltype default delete do
	double dynamic_cast else enum explicit export extern false float for friend goto if
	inline int long mutable namespace new noexcept not not_eq nullptr operator or or_eq
	private protected public register reinterpret_cast return short signed sizeof static
	static_assert static_cast struct switch template this thread_local throw true try
	typedef typeid typename union unsigned using virtual void volatile wchar_t while xor
	xor_eq override final NULL`,

	// Metal
	`metal device constant thread threadgroup threadgroup_imageblock ray_data object_data
	kernel vertex fragment compute visible stage_in access sampler texture1d
	texture1d_array texture2d texture2d_array texture2d_ms texture2d_ms_array texture3d
	texturecube texturecube_array texture_buffer depth2d depth2d_array depth2d_ms
	depth2d_ms_array depthcube depthcube_array array array_ref packed_float2
	packed_float3 packed_float4 half half2 half3 half4 ushort short2 short3 short4
	ushort2 ushort3 ushort4 uchar char2 char3 char4 uchar2 uchar3 uchar4 size_t ptrdiff_t
	simd_float2 simd_float3 simd_float4 atomic_int atomic_uint atomic_bool`,

	// Names the emitter writes
	`discard_fragment threadgroup_barrier mem_flags bias level gradient2d`,
}

var reservedKeywords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, list := range reservedLists {
		for _, word := range strings.Fields(list) {
			m[word] = struct{}{}
		}
	}
	for _, scalar := range []string{"float", "int", "uint", "bool", "half", "short", "ushort", "char", "uchar"} {
		for n := 2; n <= 4; n++ {
			m[scalar+string(rune('0'+n))] = struct{}{}
			if scalar == "float" || scalar == "half" {
				for r := 2; r <= 4; r++ {
					m[scalar+string(rune('0'+n))+"x"+string(rune('0'+r))] = struct{}{}
				}
			}
		}
	}
	return m
}()

// IsReserved reports whether name may not be used as an MSL identifier.
// Names starting with "__" are reserved for the implementation.
func IsReserved(name string) bool {
	if strings.HasPrefix(name, "__") {
		return true
	}
	_, ok := reservedKeywords[name]
	return ok
}

// Escape returns name with a trailing underscore if it is reserved.
func Escape(name string) string {
	if IsReserved(name) {
		return name + "_"
	}
	return name
}
