package astexpr

// BinaryOp enumerates the binary operators the converter can produce.
type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShiftLeft
	BinShiftRight
	BinLogicalAnd
	BinLogicalOr
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinNullCoalesce
)

var binaryOpNames = map[BinaryOp]string{
	BinAdd:          "+",
	BinSub:          "-",
	BinMul:          "*",
	BinDiv:          "/",
	BinMod:          "%",
	BinBitAnd:       "&",
	BinBitOr:        "|",
	BinBitXor:       "^",
	BinShiftLeft:    "<<",
	BinShiftRight:   ">>",
	BinLogicalAnd:   "&&",
	BinLogicalOr:    "||",
	BinEq:           "==",
	BinNeq:          "!=",
	BinLt:           "<",
	BinLe:           "<=",
	BinGt:           ">",
	BinGe:           ">=",
	BinNullCoalesce: "??",
}

func (op BinaryOp) String() string {
	if name, ok := binaryOpNames[op]; ok {
		return name
	}
	return "op?"
}

// UnaryOp enumerates the unary operators the converter can produce.
type UnaryOp int

const (
	UnMinus UnaryOp = iota
	UnLogicalNot
	UnBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case UnMinus:
		return "-"
	case UnLogicalNot:
		return "!"
	case UnBitNot:
		return "~"
	}
	return "op?"
}
