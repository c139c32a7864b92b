// Package spectest is the fixture harness: it runs a program through the
// stepping engine against a Recorder and checks YAML-described
// expectations. Fixtures live in a testdata directory as <name>.py plus
// <name>.yaml.
package spectest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"pyviz/internal/lexer"
	"pyviz/internal/limits"
	"pyviz/internal/object"
	"pyviz/internal/parser"
	"pyviz/internal/present"
	"pyviz/internal/runtimeio"
	"pyviz/internal/visualizer"
)

type Options struct {
	Source   string
	Inputs   []string
	MaxSteps int64
}

// Expectation is the YAML sidecar of a fixture.
type Expectation struct {
	Outputs     []string `yaml:"outputs"`      // exact, in order
	Scopes      []string `yaml:"scopes"`       // open_scope names, in order
	Notices     []string `yaml:"notices"`      // substring match, any kind
	ErrKind     string   `yaml:"err_kind"`     // e.g. NameError
	ErrContains string   `yaml:"err_contains"` //
	Approximate *bool    `yaml:"approximate"`
}

type Result struct {
	Rec         *present.Recorder
	Err         *object.Error
	Finished    bool
	Approximate bool
}

func Run(t *testing.T, opts Options) Result {
	t.Helper()

	l := lexer.New(opts.Source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse failed: %s", strings.Join(errs, "; "))
	}

	rec := present.NewRecorder()
	maxSteps := opts.MaxSteps
	if maxSteps == 0 {
		maxSteps = limits.DefaultMaxSteps
	}
	vopts := []visualizer.Option{
		visualizer.WithBudget(limits.NewBudget(maxSteps)),
	}
	if len(opts.Inputs) > 0 {
		vopts = append(vopts, visualizer.WithInput(runtimeio.NewQueue(opts.Inputs)))
	}
	v := visualizer.New(program, rec, vopts...)
	v.Run()

	return Result{
		Rec:         rec,
		Err:         v.Err(),
		Finished:    v.Finished(),
		Approximate: v.Approximate(),
	}
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	if exp.Outputs != nil {
		got := res.Rec.Outputs()
		if len(got) != len(exp.Outputs) {
			t.Fatalf("output mismatch:\nwant %q\ngot  %q", exp.Outputs, got)
		}
		for i := range got {
			if got[i] != exp.Outputs[i] {
				t.Fatalf("output[%d] mismatch: want %q, got %q", i, exp.Outputs[i], got[i])
			}
		}
	}

	if exp.Scopes != nil {
		got := res.Rec.OpenScopeNames()
		if len(got) != len(exp.Scopes) {
			t.Fatalf("scope mismatch:\nwant %v\ngot  %v", exp.Scopes, got)
		}
		for i := range got {
			if got[i] != exp.Scopes[i] {
				t.Fatalf("scope[%d] mismatch: want %q, got %q", i, exp.Scopes[i], got[i])
			}
		}
	}

	for _, want := range exp.Notices {
		found := false
		for _, ev := range res.Rec.Events {
			if ev.Kind == present.EvNotify && strings.Contains(ev.Value, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected a notice containing %q", want)
		}
	}

	wantErr := exp.ErrKind != "" || exp.ErrContains != ""
	if wantErr && res.Err == nil {
		t.Fatalf("expected error %s %q, run succeeded", exp.ErrKind, exp.ErrContains)
	}
	if !wantErr && res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err.At())
	}
	if exp.ErrKind != "" && string(res.Err.Kind) != exp.ErrKind {
		t.Fatalf("error kind mismatch: want %s, got %s", exp.ErrKind, res.Err.Kind)
	}
	if exp.ErrContains != "" && !strings.Contains(res.Err.Message, exp.ErrContains) {
		t.Fatalf("error message mismatch: want substring %q, got %q", exp.ErrContains, res.Err.Message)
	}
	if exp.Approximate != nil && res.Approximate != *exp.Approximate {
		t.Fatalf("approximate flag: want %v, got %v", *exp.Approximate, res.Approximate)
	}
}

// RunDir runs every <name>.py fixture under dir that has a <name>.yaml
// sidecar, as subtests.
func RunDir(t *testing.T, dir string) {
	t.Helper()

	sources, err := filepath.Glob(filepath.Join(dir, "*.py"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) == 0 {
		t.Fatalf("no fixtures under %s", dir)
	}
	for _, srcPath := range sources {
		name := strings.TrimSuffix(filepath.Base(srcPath), ".py")
		expPath := filepath.Join(dir, name+".yaml")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(srcPath)
			if err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(expPath)
			if err != nil {
				t.Fatalf("fixture %s has no expectation file: %v", name, err)
			}
			var fixture struct {
				Inputs      []string    `yaml:"inputs"`
				MaxSteps    int64       `yaml:"max_steps"`
				Expectation Expectation `yaml:"expect"`
			}
			if err := yaml.Unmarshal(data, &fixture); err != nil {
				t.Fatalf("bad expectation yaml: %v", err)
			}
			res := Run(t, Options{
				Source:   string(src),
				Inputs:   fixture.Inputs,
				MaxSteps: fixture.MaxSteps,
			})
			Assert(t, res, fixture.Expectation)
		})
	}
}
