// Package repl is the interactive stepping console: load a program, then
// advance it one dispatch at a time and inspect frames between steps.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"pyviz/internal/lexer"
	"pyviz/internal/limits"
	"pyviz/internal/parser"
	"pyviz/internal/present"
	"pyviz/internal/visualizer"
)

const prompt = "pyviz> "

// Start parses src and runs the console over in/out until quit or EOF.
func Start(in io.Reader, out io.Writer, src string, budget *limits.Budget) {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(out, "parse error: %s\n", e)
		}
		return
	}

	console := present.NewConsole(out, in)
	opts := []visualizer.Option{}
	if budget != nil {
		opts = append(opts, visualizer.WithBudget(budget))
	}
	v := visualizer.New(program, console, opts...)

	fmt.Fprint(out, "pyviz stepping console (step, continue, vars, stack, trace, quit)\n")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprint(out, "\n")
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			step(out, v, 1)
			continue
		}
		switch fields[0] {
		case "step", "s":
			n := 1
			if len(fields) > 1 {
				if parsed, err := strconv.Atoi(fields[1]); err == nil && parsed > 0 {
					n = parsed
				}
			}
			step(out, v, n)
		case "continue", "c", "run":
			v.Run()
			report(out, v)
		case "vars", "v":
			printVars(out, v)
		case "stack":
			printStack(out, v)
		case "trace", "t":
			printTrace(out, v)
		case "quit", "q", "exit":
			return
		default:
			fmt.Fprintf(out, "unknown command: %s\n", fields[0])
		}
	}
}

func step(out io.Writer, v *visualizer.Visualizer, n int) {
	for i := 0; i < n; i++ {
		if !v.Step() {
			report(out, v)
			return
		}
	}
}

func report(out io.Writer, v *visualizer.Visualizer) {
	switch {
	case v.Aborted():
		fmt.Fprintf(out, "aborted: %s\n", v.Err().At())
	case v.Finished():
		fmt.Fprintf(out, "finished in %d steps\n", v.StepsUsed())
	}
	if v.Approximate() {
		fmt.Fprint(out, "results are approximate (recursion limit reached)\n")
	}
}

func printVars(out io.Writer, v *visualizer.Visualizer) {
	f := v.CurrentFrame()
	fmt.Fprintf(out, "%s:\n", f.Name)
	for _, name := range f.Names() {
		fmt.Fprintf(out, "  %s = %s\n", name, f.Locals[name].Inspect())
	}
}

func printStack(out io.Writer, v *visualizer.Visualizer) {
	frames := v.Frames()
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		marker := " "
		if i == len(frames)-1 {
			marker = "*"
		}
		args := f.CallArgs
		if f.Name == visualizer.ModuleFrameName {
			fmt.Fprintf(out, "%s %s\n", marker, f.Name)
			continue
		}
		fmt.Fprintf(out, "%s %s(%s)\n", marker, f.Name, args)
	}
}

func printTrace(out io.Writer, v *visualizer.Visualizer) {
	for _, ts := range v.Trace() {
		names := make([]string, 0, len(ts.Locals))
		for name := range ts.Locals {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+ts.Locals[name])
		}
		fmt.Fprintf(out, "line %-4d %-40s {%s}\n", ts.Line, ts.Description, strings.Join(parts, ", "))
	}
}
