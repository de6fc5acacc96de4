//go:build wasip1

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// main implements spec §4.F's executor loop: read one framed Request from
// stdin, dispatch it, write one framed Response to stdout, repeat until
// stdin closes. A malformed request is a protocol error and is fatal to
// this process (spec §7) — it exits nonzero without a response rather than
// guessing at recovery.
func main() {
	for {
		req, err := wire.ReadRequest(os.Stdin)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			fmt.Fprintf(os.Stderr, "wasit-executor: read request: %v\n", err)
			os.Exit(1)
		}

		resp, err := handle(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wasit-executor: %v\n", err)
			os.Exit(1)
		}
		if err := wire.WriteResponse(os.Stdout, resp); err != nil {
			fmt.Fprintf(os.Stderr, "wasit-executor: write response: %v\n", err)
			os.Exit(1)
		}
	}
}

func handle(req wire.Request) (wire.Response, error) {
	switch req.Kind {
	case wire.ReqDecl:
		if err := declResource(req.Decl.ResourceID, req.Decl.Value); err != nil {
			return wire.Response{}, err
		}
		return wire.Response{Kind: wire.RespDecl}, nil

	case wire.ReqCall:
		callResp, err := execute(req.Call)
		if err != nil {
			return wire.Response{}, err
		}
		installProducedResources(req.Call, callResp)
		return wire.Response{Kind: wire.RespCall, Call: &callResp}, nil

	default:
		return wire.Response{}, fmt.Errorf("wasit-executor: unreachable RequestKind %d", req.Kind)
	}
}

// installProducedResources mirrors each RSResource-disposed result into the
// guest-local resource table, so later requests that reference the same
// resource id (e.g. a fd PathOpen just produced) resolve correctly.
func installProducedResources(call *wire.CallRequest, resp wire.CallResponse) {
	if !resp.HasReturn || resp.Return != 0 {
		return
	}
	for i, rs := range call.Results {
		if rs.Kind != wire.RSResource {
			continue
		}
		size, _ := spec.Layout(rs.Type)
		buf := memoryAt(resp.Results[i].MemoryOffset, int(size))
		installResource(rs.ResourceID, rs.Type, buf)
	}
}
