package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"fieldkit/internal/metadata"
)

// DeployResult partitions the per-field outcomes of one batch create.
type DeployResult struct {
	Succeeded []string // full names, in the order outcomes were returned
	Failed    []string // "fullName: joined messages", then fields with no outcome
}

// Orchestrator submits field definitions as a single batch.
type Orchestrator struct {
	logger *slog.Logger
}

// NewOrchestrator returns an Orchestrator. A nil logger discards output.
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{logger: logger}
}

// BuildComponents builds one qualified CustomField per spec, in input order.
func BuildComponents(specs []metadata.FieldSpec) []*metadata.CustomField {
	fields := make([]*metadata.CustomField, 0, len(specs))
	for _, spec := range specs {
		f := metadata.BuildField(spec)
		f.FullName = spec.FullName()
		fields = append(fields, f)
	}
	return fields
}

// Deploy creates all specs in one remote call. A transport failure of the
// call is returned as an error; per-item failures are partitioned into the
// result and never abort sibling items.
func (o *Orchestrator) Deploy(ctx context.Context, conn Connection, specs []metadata.FieldSpec) (DeployResult, error) {
	fields := BuildComponents(specs)
	items := make([]metadata.Component, 0, len(fields))
	for _, f := range fields {
		items = append(items, f)
	}

	o.logger.Info("creating custom fields", "count", len(items))
	results, err := conn.Create(ctx, metadata.KindCustomField, items)
	if err != nil {
		return DeployResult{}, fmt.Errorf("create custom fields: %w", err)
	}

	submitted := make(map[string]bool, len(fields))
	for _, f := range fields {
		submitted[f.FullName] = false
	}

	var res DeployResult
	for _, r := range results {
		seen, ok := submitted[r.FullName]
		if !ok || seen {
			o.logger.Warn("ignoring unexpected create outcome", "full_name", r.FullName)
			continue
		}
		submitted[r.FullName] = true
		if r.Success {
			res.Succeeded = append(res.Succeeded, r.FullName)
			o.logger.Debug("field created", "full_name", r.FullName)
			continue
		}
		res.Failed = append(res.Failed, fmt.Sprintf("%s: %s", r.FullName, r.ErrorMessage()))
		o.logger.Warn("field creation failed", "full_name", r.FullName, "error", r.ErrorMessage())
	}

	// Every submitted field ends up in exactly one partition.
	for _, f := range fields {
		if submitted[f.FullName] {
			continue
		}
		submitted[f.FullName] = true
		res.Failed = append(res.Failed, f.FullName+": no result returned")
		o.logger.Warn("no outcome for field", "full_name", f.FullName)
	}
	return res, nil
}
