package manifest

// NonVariadic is the sentinel value for Method.VarIndex meaning the method
// takes no variadic arguments.
const NonVariadic = -1

// Property describes a single parameter or return value: its ValueType,
// whether it is passed by reference, and (when relevant) the function
// prototype or enum it refers to.
//
// Prototype is populated when Type == Function: it names the signature the
// function pointer must have. Enum is populated when the property is a
// named-constant integer. Because a Prototype can itself reference other
// Methods (whose parameters reference further prototypes), Properties within
// one manifest form a DAG, not a tree — ownership is therefore shared
// (pointers), never copied wholesale.
type Property struct {
	Type        ValueType
	IsReference bool
	Prototype   *Method
	Enum        *Enum
}

// Method is a named, typed entry point in an extension's public surface.
type Method struct {
	Name              string
	FunctionName      string
	CallingConvention string
	Params            []Property
	Return            Property
	VarIndex          int
}

// IsVariadic reports whether the method accepts a variable argument tail.
func (m Method) IsVariadic() bool {
	return m.VarIndex != NonVariadic && m.VarIndex < len(m.Params)
}

// FixedParams returns the parameters preceding the variadic tail (or all
// parameters, for a non-variadic method).
func (m Method) FixedParams() []Property {
	if !m.IsVariadic() {
		return m.Params
	}
	return m.Params[:m.VarIndex]
}
