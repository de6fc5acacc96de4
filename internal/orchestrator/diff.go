package orchestrator

import (
	"sort"

	"github.com/yagehu/wasit/internal/report"
	"github.com/yagehu/wasit/internal/wasierrno"
	"github.com/yagehu/wasit/internal/wire"
)

// normalizeErrno applies spec §7's alias collapsing: EINTR is folded into
// EAGAIN before comparison, since a retried syscall racing a signal is an
// accepted source of host nondeterminism, not a genuine runtime
// disagreement. Every other errno, including EINVAL/ENOTSUP, stays
// distinct.
func normalizeErrno(e uint32) uint32 {
	if wasierrno.Errno(e) == wasierrno.ErrnoIntr {
		return uint32(wasierrno.ErrnoAgain)
	}
	return e
}

// backendStatus is the per-backend classification diff() builds before
// deciding the overall divergence class.
type backendStatus struct {
	name     string
	timedOut bool
	crashed  *CrashError
	resp     *wire.CallResponse
}

// diff compares every backend's Outcome for one Call request and returns a
// *report.Divergence naming the dominant mismatch axis, or nil if every
// backend agrees (spec §4.H). Decl requests carry no comparable payload and
// never diverge.
func diff(req wire.Request, outcomes []Outcome) *report.Divergence {
	if req.Kind != wire.ReqCall {
		return nil
	}

	statuses := make([]backendStatus, len(outcomes))
	for i, o := range outcomes {
		s := backendStatus{name: o.Backend}
		switch {
		case o.Err == ErrTimeout:
			s.timedOut = true
		case o.Err != nil:
			if ce, ok := o.Err.(*CrashError); ok {
				s.crashed = ce
			} else {
				s.crashed = &CrashError{ExitCode: -1, Stderr: o.Err.Error()}
			}
		default:
			s.resp = o.Response.Call
		}
		statuses[i] = s
	}

	if d := diffLiveness(statuses); d != nil {
		return d
	}

	var live []backendStatus
	for _, s := range statuses {
		if s.resp != nil {
			live = append(live, s)
		}
	}
	if len(live) < 2 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool { return live[i].name < live[j].name })

	return diffResponses(req, live)
}

// diffLiveness reports a Liveness divergence when backends disagree on
// whether the call completed at all: at least one crashed or timed out
// while at least one other responded. When every backend failed, no
// divergence is reported, whatever mix of crashes and timeouts occurred
// (e.g. every runtime hangs on an unimplemented function) — there is
// nothing to compare runtimes' opinions against.
func diffLiveness(statuses []backendStatus) *report.Divergence {
	var anyLive, anyDead bool
	for _, s := range statuses {
		if s.resp != nil {
			anyLive = true
		} else {
			anyDead = true
		}
	}
	if !anyDead {
		return nil
	}
	if !anyLive {
		return nil // every backend died; no comparison point
	}

	outs := make([]report.BackendOutcome, len(statuses))
	for i, s := range statuses {
		o := report.BackendOutcome{Backend: s.name}
		switch {
		case s.timedOut:
			o.Timeout = true
		case s.crashed != nil:
			o.Crashed = true
			o.ExitCode = s.crashed.ExitCode
			o.Stderr = s.crashed.Stderr
		case s.resp != nil:
			o.HasErrno = s.resp.HasReturn
			o.Errno = s.resp.Return
		}
		outs[i] = o
	}
	return &report.Divergence{
		Class:    report.ClassLiveness,
		Details:  "at least one backend failed to return a response while another did",
		Outcomes: outs,
	}
}

// diffResponses compares the CallResponses of backends that all responded,
// classifying as Availability, Return-only, or Buffer per spec §8.
func diffResponses(req wire.Request, live []backendStatus) *report.Divergence {
	first := live[0].resp

	var errnoMismatch, bufferMismatch, availabilityMismatch bool
	for _, s := range live[1:] {
		r := s.resp
		if first.HasReturn != r.HasReturn {
			errnoMismatch = true
			continue
		}
		if first.HasReturn {
			a, b := normalizeErrno(first.Return), normalizeErrno(r.Return)
			if a != b {
				errnoMismatch = true
				if (a == 0) != (b == 0) {
					availabilityMismatch = true
				}
			}
		}
		if !equalViews(first.Params, r.Params) || !equalViews(first.Results, r.Results) {
			bufferMismatch = true
		}
	}

	if !errnoMismatch && !bufferMismatch {
		return nil
	}

	outs := make([]report.BackendOutcome, len(live))
	for i, s := range live {
		outs[i] = report.BackendOutcome{
			Backend:  s.name,
			HasErrno: s.resp.HasReturn,
			Errno:    s.resp.Return,
		}
	}

	class := report.ClassBuffer
	switch {
	case availabilityMismatch:
		class = report.ClassAvailability
	case errnoMismatch && !bufferMismatch:
		class = report.ClassReturnOnly
	}

	return &report.Divergence{
		Func:     req.Call.Func.Name(),
		Class:    class,
		Details:  "backends disagreed on call outcome",
		Outcomes: outs,
	}
}

// equalViews compares two ValueView slices by observed content only.
// MemoryOffset is each guest's own linear-memory address and carries no
// cross-runtime meaning, so it is never part of the comparison.
func equalViews(a, b []wire.ValueView) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalContent(a[i].Content, b[i].Content) {
			return false
		}
	}
	return true
}

// equalContent deep-compares two PureValues, recursing into List/Record/
// Pointer payloads. PVHandle values are always treated as equal: a handle
// is a number each runtime's own kernel assigns independently (one
// process's fd 5 is another's fd 7), so comparing them would manufacture
// false divergences rather than find real ones.
func equalContent(a, b wire.PureValue) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case wire.PVBuiltin:
		return a.Builtin == b.Builtin
	case wire.PVHandle:
		return true
	case wire.PVList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !equalContent(a.List[i].Content, b.List[i].Content) {
				return false
			}
		}
		return true
	case wire.PVRecord:
		if len(a.Record) != len(b.Record) {
			return false
		}
		for i := range a.Record {
			if a.Record[i].Name != b.Record[i].Name {
				return false
			}
			if !equalContent(a.Record[i].Value.Content, b.Record[i].Value.Content) {
				return false
			}
		}
		return true
	case wire.PVPointer:
		if len(a.Pointer) != len(b.Pointer) {
			return false
		}
		for i := range a.Pointer {
			if !equalContent(a.Pointer[i].Content, b.Pointer[i].Content) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
