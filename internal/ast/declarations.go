package ast

// VariableBlockKind distinguishes the declaration sections spec §3
// lists for a VariableBlock.
type VariableBlockKind int

const (
	BlockInput VariableBlockKind = iota
	BlockOutput
	BlockInOut
	BlockLocal // VAR
	BlockTemp  // VAR_TEMP
	BlockGlobal
	BlockExternal
)

func (k VariableBlockKind) String() string {
	switch k {
	case BlockInput:
		return "VAR_INPUT"
	case BlockOutput:
		return "VAR_OUTPUT"
	case BlockInOut:
		return "VAR_IN_OUT"
	case BlockLocal:
		return "VAR"
	case BlockTemp:
		return "VAR_TEMP"
	case BlockGlobal:
		return "VAR_GLOBAL"
	case BlockExternal:
		return "VAR_EXTERNAL"
	default:
		return "VAR_?"
	}
}

// PassMode distinguishes VAR_INPUT's two spellings: by value
// (default) and `VAR_INPUT {ref}` by reference.
type PassMode int

const (
	ByVal PassMode = iota
	ByRef
)

// Linkage marks whether a declaration is internal to the compilation
// unit or has external (e.g. FFI) linkage.
type Linkage int

const (
	LinkageInternal Linkage = iota
	LinkageExternal
)

// Variable is one declared name within a VariableBlock.
type Variable struct {
	base
	Name        string
	Type        TypeExpr
	Initializer Expression // nil if absent
	// Address, if non-nil, is an explicit `AT %QX1.0`-style hardware
	// address, or (post retain-lowering) a synthesized reference to
	// the globalized retain variable (spec §4.4.2).
	Address Expression
}

func NewVariable(id NodeID, rng Range, name string, typ TypeExpr, init, address Expression) *Variable {
	return &Variable{base: newBase(id, rng), Name: name, Type: typ, Initializer: init, Address: address}
}

// VariableBlock is one `VAR ... END_VAR` family section.
type VariableBlock struct {
	base
	Kind      VariableBlockKind
	PassMode  PassMode // only meaningful for BlockInput
	Constant  bool
	Retain    bool
	Linkage   Linkage
	Variables []*Variable
}

func NewVariableBlock(id NodeID, rng Range, kind VariableBlockKind) *VariableBlock {
	return &VariableBlock{base: newBase(id, rng), Kind: kind}
}

// PouKind enumerates the Program Organisation Unit kinds (spec §3).
type PouKind int

const (
	PouProgram PouKind = iota
	PouFunction
	PouFunctionBlock
	PouClass
	PouMethod
	PouAction
	PouInterface
)

func (k PouKind) String() string {
	switch k {
	case PouProgram:
		return "PROGRAM"
	case PouFunction:
		return "FUNCTION"
	case PouFunctionBlock:
		return "FUNCTION_BLOCK"
	case PouClass:
		return "CLASS"
	case PouMethod:
		return "METHOD"
	case PouAction:
		return "ACTION"
	case PouInterface:
		return "INTERFACE"
	default:
		return "POU?"
	}
}

// IsStateful reports whether instances of this POU kind carry
// persistent storage (a synthetic struct, per spec §4.1 step 3),
// i.e. everything except stateless Functions and Interfaces.
func (k PouKind) IsStateful() bool {
	switch k {
	case PouProgram, PouFunctionBlock, PouClass, PouMethod, PouAction:
		return true
	default:
		return false
	}
}

// GenericParam is one generic-parameter declaration of a POU
// (spec §3: "optional generic-parameter list").
type GenericParam struct {
	Name   string
	Nature string // constraint name, "" = unconstrained ANY
}

// Pou is a Program Organisation Unit: Program, Function, Function
// Block, Class, Method, Action, or Interface (spec §3).
type Pou struct {
	base
	Name       string
	Kind       PouKind
	Super      string // parent class/function-block name, "" if none
	Implements []string // interface names this POU implements
	// Parent, for Methods and Actions, names the owning POU.
	Parent string
	// Property, for Methods, names the property this method backs a
	// getter/setter for ("" for an ordinary method).
	Property string

	VariableBlocks []*VariableBlock
	ReturnType     TypeExpr // nil for Programs/Function Blocks/Actions
	Generics       []GenericParam

	// Body is the statement list of the implementation, nil for
	// Interface method signatures (which have no body).
	Body []Statement
}

func NewPou(id NodeID, rng Range, name string, kind PouKind) *Pou {
	return &Pou{base: newBase(id, rng), Name: name, Kind: kind}
}

// QualifiedName returns "Owner.Name" for Methods/Actions and plain
// Name otherwise (spec §4.1 step 3: "register implementations by
// qualified name including Action/Method qualifiers Owner.Action").
func (p *Pou) QualifiedName() string {
	if p.Parent != "" {
		return p.Parent + "." + p.Name
	}
	return p.Name
}
