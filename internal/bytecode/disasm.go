package bytecode

import (
	"fmt"
	"io"
	"strconv"
)

// Disassembler formats bytecode as a readable assembly-style dump.
type Disassembler struct {
	w       io.Writer
	visited map[*Prototype]bool
	printed bool
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{
		w:       w,
		visited: make(map[*Prototype]bool),
	}
}

// DisassemblePrototype emits a readable dump for a prototype and any
// prototypes nested in its constant pool.
func (d *Disassembler) DisassemblePrototype(label string, proto *Prototype) error {
	if proto == nil || proto.Chunk == nil {
		return fmt.Errorf("nil prototype")
	}
	if d.visited[proto] {
		return nil
	}
	d.visited[proto] = true
	d.startSection()
	name := label
	if name == "" {
		name = proto.Name
	}
	if name == "" {
		name = "<script>"
	}
	fmt.Fprintf(d.w, "fun %s (arity=%d)\n", name, proto.Arity)
	if err := d.disassembleChunk(proto.Chunk); err != nil {
		return err
	}
	for _, c := range proto.Chunk.Consts {
		child, ok := c.(*Prototype)
		if !ok {
			continue
		}
		if err := d.DisassemblePrototype(child.Name, child); err != nil {
			return err
		}
	}
	return nil
}

// PrintNative emits a header for a native (host) function.
func (d *Disassembler) PrintNative(name string) {
	d.startSection()
	if name == "" {
		name = "<native>"
	}
	fmt.Fprintf(d.w, "fun %s [native]\n", name)
}

func (d *Disassembler) startSection() {
	if d.printed {
		fmt.Fprintln(d.w)
	}
	d.printed = true
}

func (d *Disassembler) disassembleChunk(chunk *Chunk) error {
	code := chunk.Code
	for ip := 0; ip < len(code); {
		offset := ip
		op := code[ip]
		ip++
		line := chunk.LineAt(offset)
		lineStr := "-"
		if line > 0 {
			lineStr = strconv.Itoa(line)
		}
		operands, err := decodeOperands(op, chunk, offset, &ip)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.w, "%04d %4s %-16s", offset, lineStr, opName(op))
		if operands != "" {
			fmt.Fprintf(d.w, " %s", operands)
		}
		fmt.Fprintln(d.w)
	}
	return nil
}

func decodeOperands(op byte, chunk *Chunk, offset int, ip *int) (string, error) {
	code := chunk.Code
	switch op {
	case OP_CONSTANT:
		idx, err := readU8(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; %s", idx, formatConstRef(chunk, idx)), nil
	case OP_GET_GLOBAL, OP_DEFINE_GLOBAL, OP_SET_GLOBAL:
		idx, err := readU8(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d ; name=%s", idx, formatConstRef(chunk, idx)), nil
	case OP_GET_LOCAL, OP_SET_LOCAL, OP_CALL:
		slot, err := readU8(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d", slot), nil
	case OP_JUMP, OP_JUMP_IF_FALSE:
		off, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d -> %d", off, *ip+int(off)), nil
	case OP_LOOP:
		off, err := readU16(code, ip)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d -> %d", off, *ip-int(off)), nil
	default:
		return "", nil
	}
}

func opName(op byte) string {
	switch op {
	case OP_CONSTANT:
		return "OP_CONSTANT"
	case OP_NIL:
		return "OP_NIL"
	case OP_TRUE:
		return "OP_TRUE"
	case OP_FALSE:
		return "OP_FALSE"
	case OP_POP:
		return "OP_POP"
	case OP_GET_LOCAL:
		return "OP_GET_LOCAL"
	case OP_SET_LOCAL:
		return "OP_SET_LOCAL"
	case OP_GET_GLOBAL:
		return "OP_GET_GLOBAL"
	case OP_DEFINE_GLOBAL:
		return "OP_DEFINE_GLOBAL"
	case OP_SET_GLOBAL:
		return "OP_SET_GLOBAL"
	case OP_EQUAL:
		return "OP_EQUAL"
	case OP_GREATER:
		return "OP_GREATER"
	case OP_LESS:
		return "OP_LESS"
	case OP_ADD:
		return "OP_ADD"
	case OP_SUBTRACT:
		return "OP_SUBTRACT"
	case OP_MULTIPLY:
		return "OP_MULTIPLY"
	case OP_DIVIDE:
		return "OP_DIVIDE"
	case OP_NOT:
		return "OP_NOT"
	case OP_NEGATE:
		return "OP_NEGATE"
	case OP_PRINT:
		return "OP_PRINT"
	case OP_JUMP:
		return "OP_JUMP"
	case OP_JUMP_IF_FALSE:
		return "OP_JUMP_IF_FALSE"
	case OP_LOOP:
		return "OP_LOOP"
	case OP_CALL:
		return "OP_CALL"
	case OP_RETURN:
		return "OP_RETURN"
	default:
		return fmt.Sprintf("OP_0x%02X", op)
	}
}

func readU8(code []byte, ip *int) (byte, error) {
	if *ip >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	val := code[*ip]
	*ip = *ip + 1
	return val, nil
}

func readU16(code []byte, ip *int) (uint16, error) {
	if *ip+1 >= len(code) {
		return 0, fmt.Errorf("unexpected end of bytecode")
	}
	hi := code[*ip]
	lo := code[*ip+1]
	*ip += 2
	return uint16(hi)<<8 | uint16(lo), nil
}

func formatConstRef(chunk *Chunk, idx byte) string {
	if int(idx) >= len(chunk.Consts) {
		return "<invalid>"
	}
	return formatConst(chunk.Consts[idx])
}

func formatConst(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return strconv.Quote(val)
	case *Prototype:
		name := val.Name
		if name == "" {
			name = "<script>"
		}
		return "fun " + name
	default:
		return "<unknown>"
	}
}
