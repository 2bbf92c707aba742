/*
Moonpc compiles MoonScript source to Lua.

Usage:

	moonpc [flags] FILE
	moonpc -i [flags]

Given a file argument, moonpc compiles it and writes the resulting Lua to
stdout (or to the file named by -o). With -i/--interactive, moonpc instead
starts a read-eval-print loop: each block of input (terminated by a blank
line) is compiled and its Lua, or its diagnostic, is printed immediately.

The flags are:

	-v, --version
		Print moonpc's version and exit.

	-i, --interactive
		Start an interactive compile session instead of compiling a file.

	-d, --direct
		In interactive mode, read blocks directly from stdin instead of
		through GNU readline.

	-o, --output FILE
		Write compiled Lua to FILE instead of stdout. Ignored in
		interactive mode.

	-c, --config FILE
		Load project defaults from the given TOML file instead of the
		default ".moonp.toml" in the current directory.

	--lint-global
	--implicit-return
	--reserve-line-number
	--space
	--line-offset N
		Override the corresponding moonp.Options field for this run.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/moonp"
)

const version = "0.1.0"

var (
	flagVersion     = pflag.BoolP("version", "v", false, "Print moonpc's version and exit.")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Start an interactive compile session.")
	flagDirect      = pflag.BoolP("direct", "d", false, "Read interactive input directly instead of via readline.")
	flagOutput      = pflag.StringP("output", "o", "", "Write compiled Lua to this file instead of stdout.")
	flagConfig      = pflag.StringP("config", "c", ".moonp.toml", "Project config file to load defaults from.")

	flagLintGlobal    = pflag.Bool("lint-global", false, "Report identifiers that resolve to no enclosing scope.")
	flagImplicitRet   = pflag.Bool("implicit-return", false, "Treat the root block's trailing expression as a return.")
	flagReserveLine   = pflag.Bool("reserve-line-number", false, "Pad output so emitted line numbers track source lines.")
	flagSpace         = pflag.Bool("space", false, "Emit spaces instead of tabs for indentation.")
	flagLineOffset    = pflag.Int("line-offset", 0, "Add this offset to every reported line number.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("moonpc %s\n", version)
		return
	}

	projCfg, err := loadProjectConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}

	opts := moonp.Options{
		LintGlobalVariable: projCfg.LintGlobalVariable,
		ImplicitReturnRoot: projCfg.ImplicitReturnRoot,
		ReserveLineNumber:  projCfg.ReserveLineNumber,
		UseSpaceOverTab:    projCfg.UseSpaceOverTab,
		LineOffset:         projCfg.LineOffset,
	}
	if pflag.Lookup("lint-global").Changed {
		opts.LintGlobalVariable = *flagLintGlobal
	}
	if pflag.Lookup("implicit-return").Changed {
		opts.ImplicitReturnRoot = *flagImplicitRet
	}
	if pflag.Lookup("reserve-line-number").Changed {
		opts.ReserveLineNumber = *flagReserveLine
	}
	if pflag.Lookup("space").Changed {
		opts.UseSpaceOverTab = *flagSpace
	}
	if pflag.Lookup("line-offset").Changed {
		opts.LineOffset = *flagLineOffset
	}

	if *flagInteractive {
		var reader blockReader
		if *flagDirect {
			reader = newDirectBlockReader(os.Stdin)
		} else {
			reader, err = newInteractiveBlockReader()
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
				os.Exit(1)
			}
		}
		if err := runREPL(reader, opts, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			os.Exit(1)
		}
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Exactly one FILE argument is required (or use -i for interactive mode).\nDo -h for help.\n")
		os.Exit(1)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}

	lua, errMsg, _ := moonp.Compile(string(source), opts)
	if errMsg != "" {
		fmt.Fprintln(os.Stderr, errMsg)
		os.Exit(1)
	}

	if *flagOutput == "" {
		fmt.Println(lua)
		return
	}

	if err := os.WriteFile(*flagOutput, []byte(lua), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}
