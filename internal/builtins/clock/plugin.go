package clock

import (
	"time"

	"github.com/xirelogy/go-lox/internal/runtime"
	"github.com/xirelogy/go-lox/internal/vm"
)

// start anchors the monotonic clock so results start near zero and are
// unaffected by wall-clock adjustments.
var start = time.Now()

func init() {
	runtime.Register(runtime.Spec{
		Name:    "clock",
		Arity:   0,
		Handler: runClock,
	})
}

func runClock(rt *vm.VM, args []vm.Value) (vm.Value, error) {
	return vm.Number(time.Since(start).Seconds()), nil
}
