package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/iley/minic/internal/ast"
	"github.com/iley/minic/internal/codegen"
	"github.com/iley/minic/internal/desugar"
	"github.com/iley/minic/internal/interp"
	"github.com/iley/minic/internal/lexer"
	"github.com/iley/minic/internal/parser"
	"github.com/iley/minic/internal/tac"
	"github.com/iley/minic/internal/typechecker"
	"github.com/iley/minic/internal/types"
)

var (
	noOptimize bool
	outputFile string
	dumpFormat string
)

var rootCmd = &cobra.Command{
	Use:   "minic",
	Short: "MiniC compiler",
	Long:  "A compiler and interpreter for the MiniC language.",
}

var runCmd = &cobra.Command{
	Use:   "run <file.mc>",
	Short: "Run a MiniC program using the tree-walking interpreter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		program, err := analyze(args[0])
		if err != nil {
			return err
		}
		return interp.Run(program, os.Stdin, os.Stdout)
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <file.mc>",
	Short: "Run a MiniC program by executing its three-address code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		program, err := compile(args[0], !noOptimize)
		if err != nil {
			return err
		}
		return tac.Exec(program, os.Stdin, os.Stdout)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <file.mc>",
	Short: "Compile a MiniC program to pseudo-assembly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return build(args[0], outputFile)
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump <file.mc>",
	Short: "Print intermediate compiler artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return dump(cmd, args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <file.mc>",
	Short: "Rebuild a MiniC program whenever the source file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return watch(args[0])
	},
}

func init() {
	execCmd.Flags().BoolVar(&noOptimize, "O0", false, "don't optimize the code")

	buildCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file name (\"-\" for stdout)")
	buildCmd.Flags().BoolVar(&noOptimize, "O0", false, "don't optimize the code")

	watchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file name")

	dumpCmd.Flags().Bool("tokens", false, "print the token stream")
	dumpCmd.Flags().Bool("ast", false, "print the parsed program")
	dumpCmd.Flags().Bool("symbols", false, "print the symbol table")
	dumpCmd.Flags().Bool("tac", false, "print the generated three-address code")
	dumpCmd.Flags().Bool("optimized", false, "print the optimized three-address code")
	dumpCmd.Flags().Bool("asm", false, "print the pseudo-assembly")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "tac", "three-address code format: tac, quads, triples or postfix")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parse reads and parses a source file.
func parse(path string) (*ast.Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	p := parser.New(lexer.New(file, path))
	return p.ParseProgram()
}

// analyze parses and typechecks a source file.
func analyze(path string) (*ast.Program, error) {
	program, err := parse(path)
	if err != nil {
		return nil, err
	}

	tc := typechecker.NewTypeChecker(program)
	typed := tc.Check()
	if errs := tc.Errors(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, fmt.Errorf("found %d errors", len(errs))
	}
	return typed, nil
}

// compile runs the full middle-end: parse, typecheck, desugar, generate
// three-address code, and optionally optimize it.
func compile(path string, optimize bool) (tac.Program, error) {
	program, err := analyze(path)
	if err != nil {
		return tac.Program{}, err
	}
	program = desugar.Run(program)

	gen := tac.NewGenerator()
	code, errs := gen.Generate(program)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, err)
		}
		return tac.Program{}, fmt.Errorf("found %d errors", len(errs))
	}

	if optimize {
		code = tac.ApplyCSE(code)
		code, err = tac.Optimize(code)
		if err != nil {
			return tac.Program{}, err
		}
	}

	if err := tac.Validate(code); err != nil {
		return tac.Program{}, err
	}
	return code, nil
}

func build(path, outputPath string) error {
	code, err := compile(path, !noOptimize)
	if err != nil {
		return err
	}

	var output io.Writer
	if outputPath == "-" {
		output = os.Stdout
	} else {
		if outputPath == "" {
			outputPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".out"
		}
		file, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer file.Close()
		output = file
	}

	return codegen.Generate(output, code)
}

func dump(cmd *cobra.Command, path string) error {
	flag := func(name string) bool {
		value, _ := cmd.Flags().GetBool(name)
		return value
	}

	if flag("tokens") {
		if err := dumpTokens(path); err != nil {
			return err
		}
	}

	if flag("ast") {
		program, err := parse(path)
		if err != nil {
			return err
		}
		fmt.Println(program)
	}

	if flag("symbols") {
		program, err := parse(path)
		if err != nil {
			return err
		}
		for _, symbol := range types.CollectSymbols(program) {
			fmt.Println(symbol)
		}
	}

	if flag("tac") {
		code, err := compile(path, false)
		if err != nil {
			return err
		}
		printTAC(code)
	}

	if flag("optimized") {
		code, err := compile(path, true)
		if err != nil {
			return err
		}
		printTAC(code)
	}

	if flag("asm") {
		code, err := compile(path, true)
		if err != nil {
			return err
		}
		if err := codegen.Generate(os.Stdout, code); err != nil {
			return err
		}
	}

	return nil
}

func dumpTokens(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	lex := lexer.New(file, path)
	for {
		lexeme, err := lex.Next()
		if err != nil {
			return err
		}
		if lexeme.Type == lexer.LEX_EOF {
			return nil
		}
		fmt.Printf("%s %s\n", lexeme.Loc, lexeme)
	}
}

func printTAC(code tac.Program) {
	switch dumpFormat {
	case "tac":
		code.Print(os.Stdout)
	case "quads":
		tac.PrintQuadruples(os.Stdout, code)
	case "triples":
		tac.PrintTriples(os.Stdout, code)
	case "postfix":
		tac.PrintPostfix(os.Stdout, code)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q, using tac\n", dumpFormat)
		code.Print(os.Stdout)
	}
}

// watch rebuilds the program every time the source file changes.
// Editors typically replace files on save, so the watch is set on the
// directory and filtered by name.
func watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	rebuild := func() {
		if err := build(path, outputFile); err != nil {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "built %s\n", path)
	}

	rebuild()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				rebuild()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
