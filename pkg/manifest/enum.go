package manifest

// EnumValue is one named constant inside an Enum.
type EnumValue struct {
	Name  string
	Value int64
}

// Enum is a named set of integer constants. The runtime treats enum-typed
// values as their underlying integers at the ABI boundary; the name survives
// only for introspection and diagnostics.
type Enum struct {
	Name   string
	Values []EnumValue
}

// ValueOf looks up a constant by name.
func (e *Enum) ValueOf(name string) (int64, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// NameOf looks up the first constant matching a value, for display purposes.
func (e *Enum) NameOf(value int64) (string, bool) {
	for _, v := range e.Values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}
