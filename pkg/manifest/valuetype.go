package manifest

// ValueType is the closed tag set that every Method parameter and return
// value is expressed in — the lingua franca the ABI bridge (pkg/abi)
// marshals to and from the uniform parameter block.
type ValueType uint8

const (
	Void ValueType = iota
	Bool
	Char8
	Char16
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float
	Double
	Pointer
	String
	Function
	Vec2
	Vec3
	Vec4
	Mat4x4
	Any

	ArrayBool
	ArrayChar8
	ArrayChar16
	ArrayInt8
	ArrayInt16
	ArrayInt32
	ArrayInt64
	ArrayUInt8
	ArrayUInt16
	ArrayUInt32
	ArrayUInt64
	ArrayFloat
	ArrayDouble
	ArrayPointer
	ArrayString
	ArrayAny
)

var valueTypeNames = map[ValueType]string{
	Void: "void", Bool: "bool", Char8: "char8", Char16: "char16",
	Int8: "int8", Int16: "int16", Int32: "int32", Int64: "int64",
	UInt8: "uint8", UInt16: "uint16", UInt32: "uint32", UInt64: "uint64",
	Float: "float", Double: "double", Pointer: "pointer", String: "string",
	Function: "function", Vec2: "vec2", Vec3: "vec3", Vec4: "vec4",
	Mat4x4: "mat4x4", Any: "any",
	ArrayBool: "bool[]", ArrayChar8: "char8[]", ArrayChar16: "char16[]",
	ArrayInt8: "int8[]", ArrayInt16: "int16[]", ArrayInt32: "int32[]",
	ArrayInt64: "int64[]", ArrayUInt8: "uint8[]", ArrayUInt16: "uint16[]",
	ArrayUInt32: "uint32[]", ArrayUInt64: "uint64[]", ArrayFloat: "float[]",
	ArrayDouble: "double[]", ArrayPointer: "pointer[]", ArrayString: "string[]",
	ArrayAny: "any[]",
}

func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

var namesToValueType = func() map[string]ValueType {
	m := make(map[string]ValueType, len(valueTypeNames))
	for t, name := range valueTypeNames {
		m[name] = t
	}
	return m
}()

// ParseValueType looks up a ValueType by its manifest-file spelling (the
// same string String returns), for use by manifest codecs.
func ParseValueType(s string) (ValueType, bool) {
	t, ok := namesToValueType[s]
	return t, ok
}

// IsArray reports whether t is one of the Array* variants.
func (t ValueType) IsArray() bool {
	return t >= ArrayBool && t <= ArrayAny
}

// Class groups value types by the register class the ABI bridge must move
// them through.
type Class uint8

const (
	ClassVoid Class = iota
	ClassInteger
	ClassFloat
	ClassPointer // strings, arrays, variants, and all pointer-passed aggregates
	ClassVector  // vec2/vec3/vec4/mat4x4
)

// Class reports which register class a scalar (non-array, non-Void) value
// of this type occupies at the ABI boundary.
func (t ValueType) Class() Class {
	switch t {
	case Void:
		return ClassVoid
	case Float, Double:
		return ClassFloat
	case Vec2, Vec3, Vec4, Mat4x4:
		return ClassVector
	case Pointer, Function, String, Any:
		return ClassPointer
	default:
		if t.IsArray() {
			return ClassPointer
		}
		return ClassInteger
	}
}

// IsHiddenReturn reports whether a value of this type is returned via a
// hidden pointer slot rather than directly in a register, on the host
// platform's native ABI (see pkg/abi for the lowering rule).
//
// Vec2/Vec3/Vec4 are included here even though the uniform layer already
// passes them by reference as parameters (ClassVector): purego's
// reflect-driven trampolines have no 128-bit vector/SIMD register class to
// marshal an in-register vec3/vec4 return through (unlike a real per-ABI
// code generator, which would split it across XMM0:XMM1 on SysV or return
// it by hidden pointer only on Windows per §4.3.1 step 5). Routing every
// vector return through the same hidden-return pointer convention as
// matrices and strings is the one rule, applied uniformly on every
// platform, the spec's Open Question on hidden-return lowering asks for —
// it trades the in-register fast path for a convention this bridge can
// actually implement without losing any bytes of the result.
func (t ValueType) IsHiddenReturn() bool {
	switch t {
	case Mat4x4, String, Any, Vec2, Vec3, Vec4:
		return true
	default:
		return t.IsArray()
	}
}

// SlotWidth reports how many 64-bit uniform-parameter-block slots a value of
// this type occupies when passed by value through the uniform layer. Vector
// types, strings, arrays and variants are always passed as one pointer slot;
// the pointee is caller-allocated storage (§6 of the spec).
func (t ValueType) SlotWidth() int {
	return 1
}
