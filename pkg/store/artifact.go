package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"mercator-hq/flowc/pkg/flow"
	"mercator-hq/flowc/pkg/flow/errors"
	"mercator-hq/flowc/pkg/flow/graph"
	"mercator-hq/flowc/pkg/telemetry/logging"
)

// Artifact is one recorded compilation, successful or not.
type Artifact struct {
	ID       string
	RunID    string
	Path     string
	Status   string // One of the flow.Status* values
	Version  string
	Revision string          // HEAD commit of the enclosing git repository, if any
	Graph    json.RawMessage // Compact graph JSON; nil for failures
	Nodes    int
	Static   int
	Computed int
	Depth    int

	Diagnostics []errors.FormattedError

	Duration  time.Duration
	CreatedAt time.Time
}

// Succeeded reports whether the artifact holds a graph.
func (a *Artifact) Succeeded() bool {
	return a.Status == flow.StatusSuccess
}

// Decode parses the stored graph.
func (a *Artifact) Decode() (*graph.Graph, error) {
	return graph.Decode(bytes.NewReader(a.Graph))
}

// NewArtifact builds an artifact from the outcome of flow.Compiler.Run.
// The run ID comes from res, or from ctx for failed runs.
func NewArtifact(ctx context.Context, path string, res *flow.Result, compileErr error, d time.Duration) (*Artifact, error) {
	a := &Artifact{
		ID:        uuid.NewString(),
		RunID:     logging.GetRunID(ctx),
		Path:      path,
		Status:    flow.Status(compileErr),
		Revision:  Revision(path),
		Duration:  d,
		CreatedAt: time.Now(),
	}
	if compileErr != nil {
		a.Diagnostics = flow.FormatErrors(compileErr)
		return a, nil
	}

	var buf bytes.Buffer
	if err := graph.Encode(&buf, res.Graph, graph.FormatJSON, ""); err != nil {
		return nil, err
	}
	a.RunID = res.RunID
	a.Version = res.Graph.Version
	a.Graph = bytes.TrimSpace(buf.Bytes())
	a.Nodes = res.Stats.Nodes
	a.Static = res.Stats.Static
	a.Computed = res.Stats.Computed
	a.Depth = res.Stats.MaxDepth
	if res.Duration > 0 {
		a.Duration = res.Duration
	}
	return a, nil
}
