// Command wasit-runtime is the per-engine child process spec §4.G/§5
// describe as "one OS process per runtime": the differential orchestrator
// launches one of these per non-wazero runtime under test, with this
// process's own stdin/stdout/stderr already piped back to the
// orchestrator by os/exec. It loads the compiled wasit-executor guest
// module under the selected engine and lets that engine's WASI
// implementation inherit this process's stdio directly, so the guest's
// read_request/write_response loop talks to the orchestrator exactly as
// if it had spawned the guest itself.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/bytecodealliance/wasmtime-go/v25"
	"github.com/wasmerio/wasmer-go/wasmer"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stderr))
}

func doMain(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("wasit-runtime", flag.ContinueOnError)
	fs.SetOutput(stderr)
	engine := fs.String("engine", "", "wasmtime|wasmer")
	module := fs.String("module", "", "path to the compiled wasit-executor wasm module")
	preopen := fs.String("preopen", "", "host directory to preopen as the guest's fd 3")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *module == "" || *preopen == "" {
		fmt.Fprintln(stderr, "wasit-runtime: -module and -preopen are required")
		return 2
	}
	wasmBytes, err := os.ReadFile(*module)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: read module: %v\n", err)
		return 1
	}

	switch *engine {
	case "wasmtime":
		return runWasmtime(wasmBytes, *preopen, stderr)
	case "wasmer":
		return runWasmer(wasmBytes, *preopen, stderr)
	default:
		fmt.Fprintf(stderr, "wasit-runtime: unknown engine %q\n", *engine)
		return 2
	}
}

// runWasmtime grounds on internal/integration_test/vs/wasmtime/wasmtime.go's
// engine/store/linker/WasiConfig wiring, adapted to inherit this process's
// stdio instead of capturing it for benchmark output comparison.
func runWasmtime(wasmBytes []byte, preopen string, stderr io.Writer) int {
	engine := wasmtime.NewEngine()
	store := wasmtime.NewStore(engine)

	wasiConfig := wasmtime.NewWasiConfig()
	wasiConfig.InheritStdin()
	wasiConfig.InheritStdout()
	wasiConfig.InheritStderr()
	wasiConfig.PreopenDir(preopen, "/")
	store.SetWasi(wasiConfig)

	linker := wasmtime.NewLinker(engine)
	if err := linker.DefineWasi(); err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: define wasi: %v\n", err)
		return 1
	}

	mod, err := wasmtime.NewModule(engine, wasmBytes)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: compile module: %v\n", err)
		return 1
	}
	instance, err := linker.Instantiate(store, mod)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: instantiate: %v\n", err)
		return 1
	}
	start := instance.GetFunc(store, "_start")
	if start == nil {
		fmt.Fprintln(stderr, "wasit-runtime: module does not export _start")
		return 1
	}
	if _, err := start.Call(store); err != nil {
		if trap, ok := err.(*wasmtime.Trap); ok {
			if code := trap.ExitStatus(); code != nil {
				return *code
			}
		}
		fmt.Fprintf(stderr, "wasit-runtime: run: %v\n", err)
		return 1
	}
	return 0
}

// runWasmer grounds on internal/integration_test/vs/wasmer/wasmer.go's
// engine/store/WasiStateBuilder wiring, adapted the same way.
func runWasmer(wasmBytes []byte, preopen string, stderr io.Writer) int {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	mod, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: compile module: %v\n", err)
		return 1
	}

	wasiEnv, err := wasmer.NewWasiStateBuilder("wasit-executor").
		PreopenDirectory(preopen).
		Finalize()
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: build wasi env: %v\n", err)
		return 1
	}
	importObject, err := wasiEnv.GenerateImportObject(store, mod)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: generate import object: %v\n", err)
		return 1
	}
	instance, err := wasmer.NewInstance(mod, importObject)
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: instantiate: %v\n", err)
		return 1
	}
	start, err := instance.Exports.GetWasiStartFunction()
	if err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: get start function: %v\n", err)
		return 1
	}
	if _, err := start(); err != nil {
		fmt.Fprintf(stderr, "wasit-runtime: run: %v\n", err)
		return 1
	}
	return 0
}
