// Command wasit is the differential-testing driver of spec §6: it reads a
// YAML config naming the runtime profiles to compare, synthesizes one
// program per concurrent run, steps every backend through it via
// internal/orchestrator, and leaves divergence records and a progress log
// under a workspace directory.
//
// wasit is deliberately thin (grounded on cmd/wazero/wazero.go's doMain
// pattern): it owns flag parsing, workspace layout, and the top-level
// generate-then-step loop, and delegates synthesis to internal/synth,
// diffing to internal/orchestrator, and reporting to internal/report.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/yagehu/wasit/internal/config"
	"github.com/yagehu/wasit/internal/gen"
	"github.com/yagehu/wasit/internal/orchestrator"
	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/runtimelog"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/synth"
	"github.com/yagehu/wasit/internal/wire"
)

// perRequestTimeout bounds how long a single backend may take to answer one
// request (spec §4.G point 2) before the orchestrator declares it hung.
// Not exposed as a flag: spec §6 only names --time-limit, the overall run
// deadline, as CLI-configurable.
const perRequestTimeout = 10 * time.Second

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("wasit", flag.ContinueOnError)
	flags.SetOutput(stderr)

	timeLimit := flags.Duration("time-limit", 0, "wall-clock time limit for the run (0 = unbounded)")
	concurrency := flags.Int("c", 0, "number of concurrent runs (overrides policy.concurrency)")
	strategy := flags.String("strategy", "", "stateful|stateless (overrides policy.strategy)")
	silent := flags.Bool("silent", false, "suppress progress.log output")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 2 {
		fmt.Fprintln(stderr, "usage: wasit <config.yaml> <workspace-dir> [--time-limit <dur>] [-c <N>] [--strategy stateful|stateless] [--silent]")
		return 2
	}

	cfg, err := config.Load(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "wasit: %v\n", err)
		return 1
	}

	if *strategy != "" {
		cfg.Policy.Strategy = *strategy
	}
	if *timeLimit > 0 {
		cfg.Policy.TimeLimit = timeLimit.String()
	}
	if *concurrency > 0 {
		cfg.Policy.Concurrency = *concurrency
	}
	if *silent {
		cfg.Policy.Silent = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "wasit: %v\n", err)
		return 1
	}

	limit, err := cfg.Policy.ParsedTimeLimit()
	if err != nil {
		fmt.Fprintf(stderr, "wasit: %v\n", err)
		return 1
	}

	workspaceDir := flags.Arg(1)

	ctx := context.Background()
	var cancel context.CancelFunc
	if limit > 0 {
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	n := cfg.Policy.Concurrency
	if n <= 0 {
		n = 1
	}

	strategyVal := synth.StrategyStateful
	if cfg.Policy.Strategy == "stateless" {
		strategyVal = synth.StrategyStateless
	}

	first, err := nextRunIndex(workspaceDir)
	if err != nil {
		fmt.Fprintf(stderr, "wasit: %v\n", err)
		return 1
	}

	var (
		wg      sync.WaitGroup
		errsMu  sync.Mutex
		runErrs []error
	)
	for i := 0; i < n; i++ {
		runIdx := first + i
		wg.Add(1)
		go func(runIdx int) {
			defer wg.Done()
			if err := runOnce(ctx, cfg, strategyVal, workspaceDir, runIdx); err != nil {
				errsMu.Lock()
				runErrs = append(runErrs, fmt.Errorf("run %d: %w", runIdx, err))
				errsMu.Unlock()
			}
		}(runIdx)
	}
	wg.Wait()

	if len(runErrs) > 0 {
		for _, err := range runErrs {
			fmt.Fprintf(stderr, "wasit: %v\n", err)
		}
		return 1
	}
	return 0
}

// nextRunIndex scans workspaceDir/runs for the lowest-numbered unused
// subdirectory name, so repeated invocations against the same workspace
// never clobber a previous run's records (spec §6's workspace layout).
func nextRunIndex(workspaceDir string) (int, error) {
	runsDir := filepath.Join(workspaceDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("list %s: %w", runsDir, err)
	}
	max := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if idx, err := strconv.Atoi(e.Name()); err == nil && idx > max {
			max = idx
		}
	}
	return max + 1, nil
}

// runOnce drives one program to completion against every configured
// backend, writing progress.log, program, and divergences/ under
// workspace/runs/<runIdx> (spec §6).
func runOnce(ctx context.Context, cfg *config.Config, strategy synth.Strategy, workspaceDir string, runIdx int) error {
	runDir := filepath.Join(workspaceDir, "runs", strconv.Itoa(runIdx))
	divDir := filepath.Join(runDir, "divergences")
	if err := os.MkdirAll(divDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", divDir, err)
	}

	var logW io.Writer = io.Discard
	if !cfg.Policy.Silent {
		f, err := os.Create(filepath.Join(runDir, "progress.log"))
		if err != nil {
			return fmt.Errorf("create progress.log: %w", err)
		}
		defer f.Close()
		logW = f
	}
	progress := runtimelog.New(logW)

	programFile, err := os.Create(filepath.Join(runDir, "program"))
	if err != nil {
		return fmt.Errorf("create program file: %w", err)
	}
	defer programFile.Close()

	store := resource.New()
	backends, err := buildBackends(ctx, cfg, runDir)
	if err != nil {
		return err
	}
	defer func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}()

	rep := report.New(divDir)
	orch := orchestrator.New(backends, store, rep, perRequestTimeout)

	rnd := rand.New(rand.NewSource(cfg.Generation.Seed + int64(runIdx)))
	generator := &gen.Generator{
		GenerateFlags:      cfg.Generation.GenerateFlags,
		GenerateNumericals: cfg.Generation.GenerateNumericals,
		MaxDepth:           cfg.Generation.MaxDepth,
		MountBaseDir:       filepath.Join(runDir, "mount"),
		Rand:               rnd,
	}
	synthesizer := synth.New(spec.FuncSigs(nil), generator, store, rnd, strategy)

	for step := 0; ; step++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		req, err := synthesizer.Step()
		if err != nil {
			if errors.Is(err, synth.ErrExhausted) {
				return nil
			}
			return fmt.Errorf("step %d: synth: %w", step, err)
		}

		if err := recordRequest(programFile, req); err != nil {
			return fmt.Errorf("step %d: record program: %w", step, err)
		}

		funcName := "decl"
		if req.Kind == wire.ReqCall {
			funcName = req.Call.Func.Name()
		}
		for _, b := range backends {
			progress.Before(step, funcName, b.Name())
		}

		outcomes, divID, err := orch.Step(ctx, req)
		if err != nil {
			return fmt.Errorf("step %d: orchestrator: %w", step, err)
		}
		for _, out := range outcomes {
			if out.Err != nil {
				progress.Crash(step, funcName, out.Backend, out.Err)
				continue
			}
			var hasReturn bool
			var errno uint32
			if out.Response.Kind == wire.RespCall && out.Response.Call != nil {
				hasReturn = out.Response.Call.HasReturn
				errno = out.Response.Call.Return
			}
			progress.After(step, funcName, out.Backend, hasReturn, errno)
		}
		if divID != "" {
			progress.Divergence(step, funcName, divergenceClass(divDir, divID), divID)
		} else if req.Kind == wire.ReqDecl {
			// Every backend accepted the Decl identically (or diff simply
			// never inspects Decl outcomes, see internal/orchestrator/diff.go);
			// install it into the shared Store so later Steps can reference it.
			if err := installDecl(store, req.Decl); err != nil {
				return fmt.Errorf("step %d: install decl: %w", step, err)
			}
		}

		synthesizer.PruneToBootstrap()
		orch.Store = synthesizer.Store
	}
}

// buildBackends constructs one orchestrator.Backend per configured runtime
// profile, each given its own fresh preopen directory under runDir (spec
// §6: "each runtime is given a fresh empty preopen directory as fd 3").
func buildBackends(ctx context.Context, cfg *config.Config, runDir string) ([]orchestrator.Backend, error) {
	backends := make([]orchestrator.Backend, 0, len(cfg.Runtimes))
	for _, rp := range cfg.Runtimes {
		preopenDir := filepath.Join(runDir, "preopen", rp.Name)
		if err := os.MkdirAll(preopenDir, 0o755); err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, fmt.Errorf("mkdir preopen for %s: %w", rp.Name, err)
		}

		var (
			b   orchestrator.Backend
			err error
		)
		if rp.Engine == "wazero" {
			wasmBytes, rerr := os.ReadFile(rp.Module)
			if rerr != nil {
				err = fmt.Errorf("read module %s: %w", rp.Module, rerr)
			} else {
				b, err = orchestrator.NewWazeroBackend(ctx, wasmBytes, preopenDir)
			}
		} else {
			b, err = orchestrator.NewSubprocessBackend(rp.Name, rp.RuntimeBin, rp.Engine, rp.Module, preopenDir)
		}
		if err != nil {
			for _, existing := range backends {
				_ = existing.Close()
			}
			return nil, fmt.Errorf("backend %s: %w", rp.Name, err)
		}
		backends = append(backends, b)
	}
	return backends, nil
}

// recordRequest appends req's wire encoding to the run's program file (spec
// §6's workspace layout names a "program" artifact alongside progress.log
// and divergences/), length-prefixed the same way the executor protocol
// frames Requests, so a later tool can replay it with wire.ReadRequest.
func recordRequest(w io.Writer, req wire.Request) error {
	return wire.WriteRequest(w, req)
}

// installDecl folds a Decl request's bootstrap handle into store once every
// backend has accepted it, mirroring internal/orchestrator's installAgreed
// for Call requests: Synthesizer.Step only produces the request and marks
// the id as a bootstrap id, it never installs it (see
// internal/synth/synth_test.go), so the driving loop must.
func installDecl(store *resource.Store, decl *wire.DeclRequest) error {
	size, _ := spec.Layout(decl.Value.Type)
	bytes := make([]byte, size)
	for i := range bytes {
		bytes[i] = byte(decl.Value.Handle >> (8 * uint(i)))
	}
	return store.Decl(decl.ResourceID, decl.Value.Type, bytes, spec.SubKindDirFd)
}

// divergenceClass reads back the class Reporter.Emit assigned, so the
// progress log can name it; internal/orchestrator.Step only returns the
// divergence id, not its classification, since the record on disk is
// already the source of truth (spec §4.H).
func divergenceClass(divDir, id string) string {
	bs, err := os.ReadFile(filepath.Join(divDir, id, "divergence.json"))
	if err != nil {
		return "unknown"
	}
	var d report.Divergence
	if err := json.Unmarshal(bs, &d); err != nil {
		return "unknown"
	}
	return string(d.Class)
}
