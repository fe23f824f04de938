package bytecode

// OpCode enumerates bytecode operations. Operand widths: OP_CONSTANT and the
// *_GLOBAL ops carry a u8 constant-pool index, the *_LOCAL ops a u8 stack
// slot, OP_CALL a u8 argument count, and the jump/loop ops a big-endian u16
// code offset.
const (
	OP_CONSTANT byte = iota
	OP_NIL
	OP_TRUE
	OP_FALSE
	OP_POP
	_ // reserved
	_ // reserved
	_ // reserved

	OP_GET_LOCAL
	OP_SET_LOCAL
	OP_GET_GLOBAL
	OP_DEFINE_GLOBAL
	OP_SET_GLOBAL
	_ // reserved
	_ // reserved
	_ // reserved

	OP_EQUAL
	OP_GREATER
	OP_LESS
	OP_ADD
	OP_SUBTRACT
	OP_MULTIPLY
	OP_DIVIDE
	OP_NOT
	OP_NEGATE
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved
	_ // reserved

	OP_PRINT
	OP_JUMP
	OP_JUMP_IF_FALSE
	OP_LOOP
	OP_CALL
	OP_RETURN
)
