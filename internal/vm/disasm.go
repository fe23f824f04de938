package vm

import (
	"fmt"
	"io"
	"sort"

	"github.com/xirelogy/go-lox/internal/bytecode"
)

// Disassemble emits assembly-style bytecode output for the function values
// currently bound in globals.
func (vm *VM) Disassemble(w io.Writer) error {
	if w == nil {
		return fmt.Errorf("nil writer")
	}
	names := make([]string, 0)
	funcs := make(map[string]*Object)
	vm.globals.Each(func(key *Object, val Value) {
		if val.Type != ValObj {
			return
		}
		if val.Obj.Kind != ObjFunction && val.Obj.Kind != ObjNative {
			return
		}
		names = append(names, key.Str)
		funcs[key.Str] = val.Obj
	})
	sort.Strings(names)
	dis := bytecode.NewDisassembler(w)
	for _, name := range names {
		fn := funcs[name]
		if fn.Kind == ObjNative {
			dis.PrintNative(name)
			continue
		}
		if err := dis.DisassemblePrototype(name, fn.Proto); err != nil {
			return err
		}
	}
	return nil
}
