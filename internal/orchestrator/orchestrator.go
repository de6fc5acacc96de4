package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/resource"
	"github.com/yagehu/wasit/internal/spec"
	"github.com/yagehu/wasit/internal/wire"
)

// Outcome is one backend's contribution to a single Step.
type Outcome struct {
	Backend  string
	Response wire.Response
	Err      error // ErrTimeout, a *CrashError, or nil
}

// Orchestrator drives every registered Backend through the same sequence
// of requests (spec §4.G), maintaining a running hash of the request
// sequence for divergence records' program_hash field and a shared
// resource.Store recording what every backend agreed was produced.
type Orchestrator struct {
	Backends []Backend
	Store    *resource.Store
	Reporter *report.Reporter
	Timeout  time.Duration

	step int
	hash [32]byte
	seen bool
}

// New returns an Orchestrator ready to Step through a program against
// backends, using store for agreed-resource bookkeeping and rep to emit
// divergence records. A per-request timeout bounds how long a single
// backend may take to answer (spec §4.G point 2) before it is declared
// hung.
func New(backends []Backend, store *resource.Store, rep *report.Reporter, timeout time.Duration) *Orchestrator {
	return &Orchestrator{Backends: backends, Store: store, Reporter: rep, Timeout: timeout}
}

// Step broadcasts req to every backend concurrently, waits for all of them
// (each bounded by its own per-request deadline), diffs what they
// reported, and on full agreement installs any RSResource-disposed result
// into the shared Store. On disagreement it emits a divergence record via
// Reporter and returns the resulting id.
//
// Step never itself returns an error for a backend-level failure (timeout,
// crash, or disagreement) — those are data, not exceptional control flow;
// the caller inspects the returned Outcomes and divergenceID.
func (o *Orchestrator) Step(ctx context.Context, req wire.Request) (outcomes []Outcome, divergenceID string, err error) {
	o.advanceHash(req)

	outcomes = make([]Outcome, len(o.Backends))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range o.Backends {
		i, b := i, b
		g.Go(func() error {
			reqCtx, cancel := context.WithTimeout(gctx, o.Timeout)
			defer cancel()
			resp, sendErr := b.Send(reqCtx, req)
			outcomes[i] = Outcome{Backend: b.Name(), Response: resp, Err: sendErr}
			if sendErr == ErrTimeout {
				if killer, ok := b.(interface{ Kill() error }); ok {
					_ = killer.Kill()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	div := diff(req, outcomes)
	if div == nil {
		o.installAgreed(req, outcomes)
		o.step++
		return outcomes, "", nil
	}

	div.ProgramHash = o.programHash()
	div.StepIndex = o.step
	if div.Func == "" && req.Kind == wire.ReqCall {
		div.Func = req.Call.Func.Name()
	}

	responses := make(map[string]wire.Response, len(outcomes))
	for _, out := range outcomes {
		if out.Err == nil {
			responses[out.Backend] = out.Response
		}
	}
	id, repErr := o.Reporter.Emit(*div, req, responses, nil)
	if repErr != nil {
		o.step++
		return outcomes, "", fmt.Errorf("orchestrator: emit divergence: %w", repErr)
	}

	o.step++
	return outcomes, id, nil
}

// advanceHash folds req's encoded bytes into the running program hash used
// to correlate every divergence found along one generated program (spec
// §4.H: "a stable JSON record keyed by program hash").
func (o *Orchestrator) advanceHash(req wire.Request) {
	h := sha256.New()
	if o.seen {
		h.Write(o.hash[:])
	}
	h.Write(wire.EncodeRequest(req))
	copy(o.hash[:], h.Sum(nil))
	o.seen = true
}

func (o *Orchestrator) programHash() string {
	return hex.EncodeToString(o.hash[:])
}

// installAgreed folds any RSResource-disposed result into the shared
// Store, using the first outcome in backend order that carries a Call
// response as the representative value. This is safe even though each backend's actual fd/handle is its
// own process-local number (never compared by diff, see equalContent):
// the host-side Store only needs a type- and sub-kind-correct placeholder
// so internal/gen can offer this resource id as a Handle-typed argument
// later — the real value resolution happens independently inside each
// backend's own in-guest resource table (cmd/wasit-executor/resources.go),
// keyed by the same id (spec §5: "no sharing across runtimes").
func (o *Orchestrator) installAgreed(req wire.Request, outcomes []Outcome) {
	if req.Kind != wire.ReqCall {
		return
	}
	call := req.Call
	sig := spec.Lookup(call.Func)

	var agreed *wire.CallResponse
	for _, out := range outcomes {
		if out.Err == nil && out.Response.Kind == wire.RespCall && out.Response.Call != nil {
			agreed = out.Response.Call
			break
		}
	}
	if agreed == nil || !agreed.HasReturn || agreed.Return != 0 {
		return
	}

	for i, rs := range call.Results {
		if rs.Kind != wire.RSResource {
			continue
		}
		size, _ := spec.Layout(rs.Type)
		bytes := make([]byte, size)
		if rs.Type.Kind == spec.KindBuiltin && i < len(agreed.Results) {
			putLE(bytes, agreed.Results[i].Content.Builtin)
		}
		subKind := spec.SubKindNone
		if i < len(sig.Results) {
			subKind = sig.Results[i].SubKind
		}
		_ = o.Store.InstallResult(rs.ResourceID, rs.Type, bytes, subKind)
	}
}

// putLE writes the low len(dst) bytes of v into dst, little-endian. It is
// a narrow helper for the Builtin-typed-result placeholder case above; the
// common case (a produced Handle) never reaches it, since Handle's
// placeholder bytes are left zeroed on purpose (see installAgreed).
func putLE(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v >> (8 * uint(i)))
	}
}
