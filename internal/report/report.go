// Package report implements the divergence reporter of spec §4.H: when the
// differential orchestrator observes two runtimes disagree on a call, this
// package classifies the disagreement and emits a durable record under the
// run's workspace directory.
//
// Grounded on spec §8's literal classification axes (Return-only, Buffer,
// Availability, Liveness) and on the teacher's own preference for plain
// encoding/json record dumps over a schema-heavy serialization library —
// nothing in the pack reaches for protobuf or a schema registry for a
// one-shot debugging artifact like this.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yagehu/wasit/internal/wire"
)

// Class is one of spec §8's four divergence axes.
type Class string

const (
	// ClassReturnOnly means every backend agreed on every observed buffer
	// and param mutation but disagreed on the returned errno.
	ClassReturnOnly Class = "return_only"
	// ClassBuffer means the backends disagreed on the content of a
	// mutated buffer or result, independent of the returned errno.
	ClassBuffer Class = "buffer"
	// ClassAvailability means some backends reported success (errno 0)
	// while others consistently reported an error, suggesting the
	// function is unsupported or gated differently between runtimes.
	ClassAvailability Class = "availability"
	// ClassLiveness means at least one backend crashed or failed to
	// respond within the call deadline while another did not.
	ClassLiveness Class = "liveness"
)

// BackendOutcome is one backend's contribution to a divergence record.
type BackendOutcome struct {
	Backend  string `json:"backend"`
	Errno    uint32 `json:"errno,omitempty"`
	HasErrno bool   `json:"has_errno,omitempty"`
	Timeout  bool   `json:"timeout,omitempty"`
	Crashed  bool   `json:"crashed,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
}

// Divergence is one JSON record: spec §4.H's "stable JSON record keyed by
// program hash, plus the exact Request/Response frames and the host-side
// preopen snapshot". The frames themselves are written as sibling .bin
// files (see Reporter.Emit) rather than inlined, since they are the exact
// bytes exchanged on the wire, not a JSON-friendly tree.
type Divergence struct {
	ID          string           `json:"id"`
	ProgramHash string           `json:"program_hash"`
	StepIndex   int              `json:"step_index"`
	Func        string           `json:"func"`
	Class       Class            `json:"class"`
	Details     string           `json:"details"`
	Outcomes    []BackendOutcome `json:"outcomes"`
}

// Reporter writes Divergence records under a run's divergences directory
// (workspace/runs/<i>/divergences, spec §6).
type Reporter struct {
	dir string
}

// New returns a Reporter that writes under dir, creating it if necessary.
func New(dir string) *Reporter {
	return &Reporter{dir: dir}
}

// Emit assigns a fresh id to d, writes its metadata as JSON, and writes the
// raw request/response frames and preopen snapshot alongside it. Returns
// the assigned id.
func (r *Reporter) Emit(d Divergence, req wire.Request, responses map[string]wire.Response, preopenSnapshot []string) (string, error) {
	id := uuid.NewString()
	d.ID = id
	base := filepath.Join(r.dir, id)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("report: mkdir %s: %w", base, err)
	}

	meta, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal divergence: %w", err)
	}
	if err := os.WriteFile(filepath.Join(base, "divergence.json"), meta, 0o644); err != nil {
		return "", fmt.Errorf("report: write divergence.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(base, "request.bin"), wire.EncodeRequest(req), 0o644); err != nil {
		return "", fmt.Errorf("report: write request.bin: %w", err)
	}
	for name, resp := range responses {
		fname := filepath.Join(base, fmt.Sprintf("response.%s.bin", name))
		if err := os.WriteFile(fname, wire.EncodeResponse(resp), 0o644); err != nil {
			return "", fmt.Errorf("report: write %s: %w", fname, err)
		}
	}
	if len(preopenSnapshot) > 0 {
		snap, err := json.MarshalIndent(preopenSnapshot, "", "  ")
		if err != nil {
			return "", fmt.Errorf("report: marshal preopen snapshot: %w", err)
		}
		if err := os.WriteFile(filepath.Join(base, "preopen_snapshot.json"), snap, 0o644); err != nil {
			return "", fmt.Errorf("report: write preopen_snapshot.json: %w", err)
		}
	}
	return id, nil
}
