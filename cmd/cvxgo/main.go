package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/cvxgo/cvxgo/internal/warmstart"
	"github.com/cvxgo/cvxgo/pkg/model"
	"github.com/cvxgo/cvxgo/pkg/solver"
)

// SolveTimeout bounds one remote solve call.
// Can be set at build time using: -ldflags "-X main.SolveTimeout=5m"
// Default is "2m".
var SolveTimeout = "2m"

func useColor() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func green(s string) string {
	if useColor() {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

func red(s string) string {
	if useColor() {
		return "\033[31m" + s + "\033[0m"
	}
	return s
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}

	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}

	fmt.Printf(`Usage: %s <command> [flags] <model.yaml>

Commands:
  check   build the model and print the stuffed cone program
  solve   solve the model against a remote solver service

Solve flags:
  -addr    solver service address (host:port)
  -proto   path to the solver service .proto file
  -method  full method path, e.g. cvx.Solver/Solve
  -warm    path to a warm-start database (optional)
`, os.Args[0])
	return true
}

// loadModel reads, validates and builds the model at path.
func loadModel(path string) (*model.Model, *model.Built, error) {
	m, err := model.Load(path)
	if err != nil {
		return nil, nil, err
	}
	b, err := m.Build()
	if err != nil {
		return nil, nil, err
	}
	return m, b, nil
}

func printProgram(p *solver.ConeProgram) {
	fmt.Printf("variables:   %d\n", p.NumVars)
	fmt.Printf("rows:        %d\n", p.Rows())
	fmt.Printf("nonzeros:    %d\n", len(p.A))
	fmt.Printf("offset:      %g\n", p.ObjectiveOffset)
	if len(p.Integers) > 0 {
		fmt.Printf("integer:     %d columns\n", len(p.Integers))
	}
	if len(p.Binaries) > 0 {
		fmt.Printf("binary:      %d columns\n", len(p.Binaries))
	}
	fmt.Println("cones:")
	for _, c := range p.Cones {
		if c.Kind == "psd" {
			fmt.Printf("  %-8s dim=%d side=%d\n", c.Kind, c.Dim, c.Side)
			continue
		}
		fmt.Printf("  %-8s dim=%d\n", c.Kind, c.Dim)
	}
}

func handleCheck() bool {
	if len(os.Args) < 2 || os.Args[1] != "check" {
		return false
	}

	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s check <model.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	m, b, err := loadModel(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	p, err := b.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s (fingerprint %s)\n", green("ok"), m.Name, m.Fingerprint())
	printProgram(p)
	return true
}

func handleSolve() bool {
	if len(os.Args) < 2 || os.Args[1] != "solve" {
		return false
	}

	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9090", "solver service address")
	proto := fs.String("proto", "", "path to the solver service .proto file")
	method := fs.String("method", "cvx.Solver/Solve", "full method path")
	warm := fs.String("warm", "", "path to a warm-start database")
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s solve [flags] <model.yaml>\n", os.Args[0])
		os.Exit(1)
	}
	if *proto == "" {
		fmt.Fprintln(os.Stderr, "Error: -proto is required")
		os.Exit(1)
	}

	m, b, err := loadModel(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	var store *warmstart.Store
	if *warm != "" {
		store, err = warmstart.Open(*warm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening warm-start store: %s\n", err)
			os.Exit(1)
		}
		defer store.Close()

		n, err := store.Load(m.Fingerprint(), b.Vars)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading warm start: %s\n", err)
			os.Exit(1)
		}
		if n > 0 {
			fmt.Printf("warm start: seeded %d variables\n", n)
		}
	}

	p, err := b.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := solver.LoadProto(*proto); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading proto: %s\n", err)
		os.Exit(1)
	}
	remote, err := solver.NewRemote(*addr, *method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to solver: %s\n", err)
		os.Exit(1)
	}
	defer remote.Close()

	timeout, err := time.ParseDuration(SolveTimeout)
	if err != nil {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := remote.Solve(ctx, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Solve error: %s\n", err)
		os.Exit(1)
	}

	if res.Status != solver.StatusOptimal {
		fmt.Printf("status: %s\n", red(res.Status.String()))
		os.Exit(1)
	}

	if err := b.Session.Apply(p, res); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying solution: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("status: %s\n", green(res.Status.String()))
	fmt.Printf("objective: %g\n", res.Objective)

	names := make([]string, 0, len(b.Vars))
	for name := range b.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val, ok := b.Vars[name].Value()
		if !ok {
			continue
		}
		fmt.Printf("  %s = %v\n", name, val.ColumnMajor())
	}

	if store != nil {
		if err := store.Save(m.Fingerprint(), b.Vars); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: saving warm start: %s\n", err)
		}
	}
	return true
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleCheck() {
		return
	}
	if handleSolve() {
		return
	}

	fmt.Fprintf(os.Stderr, "Usage: %s <check|solve> [flags] <model.yaml>\n", os.Args[0])
	os.Exit(1)
}
