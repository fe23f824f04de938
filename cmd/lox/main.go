package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"

	lox "github.com/xirelogy/go-lox"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("lox")

func main() {
	configPath := flag.String("config", "lox.toml", "interpreter configuration file")
	disasm := flag.Bool("disasm", false, "dump compiled bytecode after the run")
	verbose := flag.Bool("verbose", false, "log instruction dispatch")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}

	verbosity := cfg.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	machine := lox.NewVM()
	if cfg.MaxFrames > 0 {
		machine.SetMaxFrames(cfg.MaxFrames)
	}
	if cfg.Trace || *verbose {
		machine.SetTraceHook(func(info lox.TraceInfo) {
			log.Debugf("%s:%d ip=%04d op=0x%02X", info.Function, info.Line, info.IP, info.Op)
		})
	}

	switch flag.NArg() {
	case 0:
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			repl(machine)
			return
		}
		source, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not read stdin: %s\n", err)
			os.Exit(74)
		}
		os.Exit(run(machine, string(source), *disasm))
	case 1:
		source, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open file \"%s\".\n", flag.Arg(0))
			os.Exit(74)
		}
		os.Exit(run(machine, string(source), *disasm))
	default:
		fmt.Fprintln(os.Stderr, "Usage: lox [script]")
		os.Exit(64)
	}
}

func run(machine *lox.VM, source string, disasm bool) int {
	result := machine.Interpret(source)
	if disasm {
		if err := machine.Disassemble(os.Stdout); err != nil {
			log.Errorf("disassemble: %s", err.Error())
		}
	}
	switch result {
	case lox.ResultCompileError:
		return 65
	case lox.ResultRuntimeError:
		return 70
	default:
		return 0
	}
}

func repl(machine *lox.VM) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		machine.Interpret(scanner.Text())
	}
}
