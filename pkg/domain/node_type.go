package domain

// InputKind distinguishes the two input arities a node type can declare.
type InputKind string

const (
	// InputSlotted accepts a fixed number of ordered inputs.
	InputSlotted InputKind = "slotted"
	// InputMultiple accepts any number of unordered inputs.
	InputMultiple InputKind = "multiple"
)

// InputArity describes how many inputs a node type takes.
type InputArity struct {
	Kind        InputKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Slots       int       `json:"slots,omitempty" yaml:"slots,omitempty" mapstructure:"slots"`
	ZeroAllowed bool      `json:"zero_allowed,omitempty" yaml:"zero_allowed,omitempty" mapstructure:"zero_allowed"`
}

// Slotted returns a slotted arity with n slots.
func Slotted(n int) InputArity {
	return InputArity{Kind: InputSlotted, Slots: n}
}

// Multiple returns an unordered arity.
func Multiple(zeroAllowed bool) InputArity {
	return InputArity{Kind: InputMultiple, ZeroAllowed: zeroAllowed}
}

// ParamKind is the primitive kind of a node parameter.
type ParamKind string

const (
	ParamBool         ParamKind = "bool"
	ParamFloat        ParamKind = "float"
	ParamUint         ParamKind = "uint"
	ParamInt          ParamKind = "int"
	ParamString       ParamKind = "string"
	ParamPosition     ParamKind = "position"
	ParamPositionList ParamKind = "position_list"
)

// ParamDescriptor names one parameter of a node type.
type ParamDescriptor struct {
	Name string    `json:"name" yaml:"name" mapstructure:"name"`
	Kind ParamKind `json:"kind" yaml:"kind" mapstructure:"kind"`
}

// NodeType is an immutable catalog entry. Name is the unique key.
type NodeType struct {
	Name       string            `json:"name" yaml:"name" mapstructure:"name"`
	Input      InputArity        `json:"input" yaml:"input" mapstructure:"input"`
	Parameters []ParamDescriptor `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Parameter returns the descriptor with the given name.
func (t NodeType) Parameter(name string) (ParamDescriptor, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParamDescriptor{}, false
}
