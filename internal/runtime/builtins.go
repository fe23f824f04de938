package runtime

import (
	"fmt"
	"sort"

	"github.com/xirelogy/go-lox/internal/vm"
)

// Spec describes a native function: its script-visible name, its fixed
// argument count, and the Go handler.
type Spec struct {
	Name    string
	Arity   int
	Handler vm.NativeFunc
}

var byName = map[string]Spec{}

// Register installs a native for installation into new VM instances.
// Plugins call this from init(); the set is fixed before any VM exists.
func Register(spec Spec) {
	if spec.Handler == nil {
		panic(fmt.Sprintf("native %s has nil handler", spec.Name))
	}
	if _, exists := byName[spec.Name]; exists {
		panic(fmt.Sprintf("native %s already registered", spec.Name))
	}
	byName[spec.Name] = spec
}

// LookupByName finds a native by its script-visible name.
func LookupByName(name string) (Spec, bool) {
	spec, ok := byName[name]
	return spec, ok
}

// All returns the registered natives in name order.
func All() []Spec {
	out := make([]Spec, 0, len(byName))
	for _, spec := range byName {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Install binds every registered native into the VM's globals, wrapping
// each handler with its arity check.
func Install(machine *vm.VM) {
	for _, spec := range All() {
		spec := spec
		machine.DefineNative(spec.Name, func(rt *vm.VM, args []vm.Value) (vm.Value, error) {
			if len(args) != spec.Arity {
				return vm.Nil(), fmt.Errorf("Expected %d arguments but got %d.", spec.Arity, len(args))
			}
			return spec.Handler(rt, args)
		})
	}
}
