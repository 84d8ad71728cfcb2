package metadata

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Wire format of a method-body description, as exported by the
// metadata-reading frontend. Operands are decoded according to the
// opcode's OperandKind.

type bodyJSON struct {
	CodeSize     uint32            `json:"codeSize"`
	Instructions []instructionJSON `json:"instructions"`
	Handlers     []handlerJSON     `json:"handlers,omitempty"`
	Locals       []localJSON       `json:"locals,omitempty"`
}

type instructionJSON struct {
	Offset  uint32          `json:"offset"`
	OpCode  string          `json:"opcode"`
	Operand json.RawMessage `json:"operand,omitempty"`
}

type handlerJSON struct {
	Kind         string    `json:"kind"`
	TryStart     uint32    `json:"tryStart"`
	TryEnd       uint32    `json:"tryEnd"`
	HandlerStart uint32    `json:"handlerStart"`
	HandlerEnd   uint32    `json:"handlerEnd"`
	FilterStart  uint32    `json:"filterStart,omitempty"`
	CatchType    *typeJSON `json:"catchType,omitempty"`
}

type typeJSON struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name"`
}

type localJSON struct {
	Name   string    `json:"name,omitempty"`
	Index  int       `json:"index"`
	Pinned bool      `json:"pinned,omitempty"`
	Type   *typeJSON `json:"type,omitempty"`
}

type memberJSON struct {
	Declaring *typeJSON `json:"declaring,omitempty"`
	Name      string    `json:"name"`
	Static    bool      `json:"static,omitempty"`
}

type paramJSON struct {
	Name  string    `json:"name"`
	Index int       `json:"index"`
	Type  *typeJSON `json:"type,omitempty"`
}

type tokenJSON struct {
	Type   *typeJSON   `json:"type,omitempty"`
	Method *memberJSON `json:"method,omitempty"`
	Field  *memberJSON `json:"field,omitempty"`
}

var handlerKinds = map[string]HandlerKind{
	"catch":   HandlerCatch,
	"filter":  HandlerFilter,
	"finally": HandlerFinally,
	"fault":   HandlerFault,
}

// DecodeBody reads the JSON description of one method body. References
// are identity-stable within the decoded body: the same type name, local
// slot or parameter index yields the same instance everywhere.
func DecodeBody(r io.Reader) (*Body, error) {
	var wire bodyJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, errors.Wrap(err, "malformed method description")
	}

	d := &bodyDecoder{
		types:  map[string]*TypeRef{},
		params: map[int]*ParamDef{},
	}
	body := &Body{CodeSize: wire.CodeSize}
	for _, l := range wire.Locals {
		body.Locals = append(body.Locals, &VariableDef{
			Name:   l.Name,
			Index:  l.Index,
			Pinned: l.Pinned,
			Type:   d.typeRef(l.Type),
		})
	}
	for _, h := range wire.Handlers {
		kind, ok := handlerKinds[h.Kind]
		if !ok {
			return nil, errors.Errorf("unknown handler kind %q", h.Kind)
		}
		body.Handlers = append(body.Handlers, ExceptionHandler{
			Kind:         kind,
			TryStart:     h.TryStart,
			TryEnd:       h.TryEnd,
			HandlerStart: h.HandlerStart,
			HandlerEnd:   h.HandlerEnd,
			FilterStart:  h.FilterStart,
			CatchType:    d.typeRef(h.CatchType),
		})
	}
	for _, instr := range wire.Instructions {
		op, ok := OpCodeByName(instr.OpCode)
		if !ok {
			return nil, errors.Errorf("unknown opcode %q at IL_%04x", instr.OpCode, instr.Offset)
		}
		operand, err := d.operand(body, op, instr)
		if err != nil {
			return nil, err
		}
		body.Instructions = append(body.Instructions, Instruction{
			Offset:  instr.Offset,
			OpCode:  op,
			Operand: operand,
		})
	}
	if body.CodeSize == 0 && len(body.Instructions) > 0 {
		// size-1 instructions are a reasonable default for hand-written
		// descriptions that omit codeSize
		body.CodeSize = body.Instructions[len(body.Instructions)-1].Offset + 1
	}
	return body, nil
}

type bodyDecoder struct {
	types  map[string]*TypeRef
	params map[int]*ParamDef
}

func (d *bodyDecoder) typeRef(t *typeJSON) *TypeRef {
	if t == nil {
		return nil
	}
	key := t.Namespace + "." + t.Name
	if existing, ok := d.types[key]; ok {
		return existing
	}
	ref := NewType(t.Namespace, t.Name)
	d.types[key] = ref
	return ref
}

func (d *bodyDecoder) operand(body *Body, op *OpCode, instr instructionJSON) (any, error) {
	if op.Operand == OperandNone {
		if len(instr.Operand) != 0 {
			return nil, errors.Errorf("%s at IL_%04x takes no operand", op.Name, instr.Offset)
		}
		return nil, nil
	}
	if len(instr.Operand) == 0 {
		return nil, errors.Errorf("missing operand for %s at IL_%04x", op.Name, instr.Offset)
	}
	wrap := func(err error) error {
		return errors.Wrapf(err, "bad operand for %s at IL_%04x", op.Name, instr.Offset)
	}
	switch op.Operand {
	case OperandTarget:
		return decodeAs[uint32](instr.Operand, wrap)
	case OperandSwitchTargets:
		return decodeAs[[]uint32](instr.Operand, wrap)
	case OperandI4:
		return decodeAs[int32](instr.Operand, wrap)
	case OperandI8:
		return decodeAs[int64](instr.Operand, wrap)
	case OperandR8:
		return decodeAs[float64](instr.Operand, wrap)
	case OperandString:
		return decodeAs[string](instr.Operand, wrap)
	case OperandVariable:
		index, err := decodeAs[int](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		for _, local := range body.Locals {
			if local.Index == index {
				return local, nil
			}
		}
		return nil, errors.Errorf("%s at IL_%04x references undeclared local %d", op.Name, instr.Offset, index)
	case OperandParameter:
		p, err := decodeAs[paramJSON](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		if existing, ok := d.params[p.Index]; ok {
			return existing, nil
		}
		param := &ParamDef{Name: p.Name, Index: p.Index, Type: d.typeRef(p.Type)}
		d.params[p.Index] = param
		return param, nil
	case OperandType:
		t, err := decodeAs[typeJSON](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		return d.typeRef(&t), nil
	case OperandField:
		m, err := decodeAs[memberJSON](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		return &FieldRef{Name: m.Name, Declaring: d.typeRef(m.Declaring), Static: m.Static}, nil
	case OperandMethod:
		m, err := decodeAs[memberJSON](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		return &MethodRef{Name: m.Name, Declaring: d.typeRef(m.Declaring), Static: m.Static}, nil
	case OperandToken:
		tok, err := decodeAs[tokenJSON](instr.Operand, wrap)
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Type != nil:
			return d.typeRef(tok.Type), nil
		case tok.Method != nil:
			return &MethodRef{Name: tok.Method.Name, Declaring: d.typeRef(tok.Method.Declaring), Static: tok.Method.Static}, nil
		case tok.Field != nil:
			return &FieldRef{Name: tok.Field.Name, Declaring: d.typeRef(tok.Field.Declaring), Static: tok.Field.Static}, nil
		default:
			return nil, errors.Errorf("empty token operand at IL_%04x", instr.Offset)
		}
	default:
		return nil, errors.Errorf("unhandled operand kind for %s", op.Name)
	}
}

func decodeAs[T any](raw json.RawMessage, wrap func(error) error) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, wrap(err)
	}
	return v, nil
}
