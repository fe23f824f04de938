// Package builtins activates every native-function plugin through its
// blank import. Importing this package is all a host needs to get the
// standard natives installed into new VMs.
package builtins

import (
	_ "github.com/xirelogy/go-lox/internal/builtins/clock"
)
