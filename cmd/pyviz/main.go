package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"pyviz/internal/ast"
	"pyviz/internal/complexity"
	"pyviz/internal/config"
	"pyviz/internal/lexer"
	"pyviz/internal/limits"
	"pyviz/internal/lint"
	"pyviz/internal/parser"
	"pyviz/internal/present"
	"pyviz/internal/repl"
	"pyviz/internal/runtimeio"
	"pyviz/internal/theater"
	"pyviz/internal/token"
	"pyviz/internal/visualizer"
)

func main() {
	tokensMode := flag.Bool("tokens", false, "print tokens instead of running")
	astMode := flag.Bool("ast", false, "print AST instead of running")
	quiet := flag.Bool("quiet", false, "run mode: show only program output and notices")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "run", "theater", "repl", "lint":
	default:
		cmd = "run"
		cmdArgs = args
	}

	if len(cmdArgs) != 1 {
		usage()
		os.Exit(1)
	}

	scene, src, err := loadTarget(cmdArgs[0])
	if err != nil {
		fmt.Println("load error:", err)
		os.Exit(1)
	}

	if *tokensMode {
		l := lexer.New(src)
		for {
			tok := l.NextToken()
			fmt.Printf("%4d:%-3d  %-10s  %q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
			if tok.Type == token.EOF {
				break
			}
		}
		return
	}

	program, ok := parse(cmdArgs[0], src)
	if !ok {
		os.Exit(1)
	}

	if *astMode {
		fmt.Println(program.String())
		return
	}

	switch cmd {
	case "lint":
		for _, d := range lint.Run(program) {
			fmt.Println(d.Format(cmdArgs[0]))
		}
		fmt.Println("estimated complexity:", complexity.Estimate(program))
		return
	case "repl":
		repl.Start(os.Stdin, os.Stdout, src, scene.Budget())
		return
	case "theater":
		th := theater.New()
		v := visualizer.New(program, th,
			visualizer.WithBudget(scene.Budget()),
			visualizer.WithInput(runtimeio.NewQueue(scene.Inputs)))
		err := theater.Run(src, v, th, theater.Options{Title: title(scene), Speed: scene.Speed()})
		if err != nil {
			fmt.Println("theater error:", err)
			os.Exit(1)
		}
		return
	default:
		console := present.NewConsole(os.Stdout, os.Stdin)
		console.Quiet = *quiet
		in := runtimeio.NewQueue(scene.Inputs).
			WithFallback(runtimeio.Interactive{}.ReadLine)
		v := visualizer.New(program, console,
			visualizer.WithBudget(scene.Budget()),
			visualizer.WithInput(in))
		v.Run()
		if v.Aborted() {
			fmt.Fprintln(os.Stderr, v.Err().At())
			os.Exit(1)
		}
	}
}

// loadTarget accepts either a scene manifest (.yaml) or a bare program
// file; a bare file gets a default scene.
func loadTarget(path string) (*config.Scene, string, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		scene, err := config.LoadScene(path)
		if err != nil {
			return nil, "", err
		}
		src, err := scene.Program()
		if err != nil {
			return nil, "", err
		}
		return scene, src, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	scene := &config.Scene{
		Source:   path,
		SpeedMS:  config.DefaultSpeedMS,
		MaxSteps: limits.DefaultMaxSteps,
	}
	return scene, string(b), nil
}

func parse(path, src string) (*ast.Program, bool) {
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	for _, d := range p.Diagnostics() {
		fmt.Fprintln(os.Stderr, d.Format(path))
	}
	if len(p.Errors()) > 0 {
		return nil, false
	}
	return program, true
}

func title(s *config.Scene) string {
	if s.Name != "" {
		return "pyviz - " + s.Name
	}
	return "pyviz"
}

func usage() {
	fmt.Println("usage: pyviz [flags] <run|theater|repl|lint> <file.py | scene.yaml>")
	flag.PrintDefaults()
}
