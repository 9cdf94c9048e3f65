package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"fieldkit/internal/metadata"
)

// MissingTargetOrgMessage is reported when no org alias was supplied.
const MissingTargetOrgMessage = "No target org specified. Pass --target-org <alias>, set FIELDKIT_TARGET_ORG, " +
	"or select a default with `fieldkit config use-profile <alias>`."

// Request is the input of one CreateFields invocation.
type Request struct {
	Fields      []metadata.FieldSpec
	Permissions []PermissionRequest
	TargetOrg   string
	WorkDir     string
}

// Result is the report of one CreateFields invocation.
type Result struct {
	Report  string         `json:"report"`
	IsError bool           `json:"is_error"`
	Created []string       `json:"created,omitempty"`
	Failed  []string       `json:"failed,omitempty"`
	Grants  []GrantOutcome `json:"grants,omitempty"`
}

// Service runs the two-phase create-then-grant operation.
type Service struct {
	resolver     Resolver
	orchestrator *Orchestrator
	permissions  *PermissionEngine
	logger       *slog.Logger
}

// NewService wires a Service around resolver. A nil logger discards output.
func NewService(resolver Resolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		resolver:     resolver,
		orchestrator: NewOrchestrator(logger),
		permissions:  NewPermissionEngine(logger),
		logger:       logger,
	}
}

// CreateFields creates req.Fields in one batch, then grants req.Permissions on
// the fields that were created. Every failure is rendered into the report;
// the error flag is set for precondition errors, orchestration errors, and
// per-field creation failures. Re-running with the same input submits the
// fields again.
func (s *Service) CreateFields(ctx context.Context, req Request) Result {
	if req.TargetOrg == "" {
		return Result{Report: MissingTargetOrgMessage, IsError: true}
	}

	res, err := s.run(ctx, req)
	if err != nil {
		s.logger.Error("field deployment failed", "target_org", req.TargetOrg, "error", err)
		return Result{Report: fmt.Sprintf("Error creating fields: %s", err), IsError: true}
	}
	return res
}

func (s *Service) run(ctx context.Context, req Request) (Result, error) {
	conn, err := s.resolver.Resolve(ctx, req.TargetOrg, req.WorkDir)
	if err != nil {
		return Result{}, fmt.Errorf("resolve org %q: %w", req.TargetOrg, err)
	}

	deployed, err := s.orchestrator.Deploy(ctx, conn, req.Fields)
	if err != nil {
		return Result{}, err
	}

	var grants []GrantOutcome
	if len(deployed.Succeeded) > 0 && len(req.Permissions) > 0 {
		grants = s.permissions.Assign(ctx, conn, deployed.Succeeded, req.Permissions)
	}

	summary := Summarize(deployed.Succeeded, deployed.Failed, JoinLines(grants))
	return Result{
		Report:  summary.Text,
		IsError: summary.IsError,
		Created: deployed.Succeeded,
		Failed:  deployed.Failed,
		Grants:  grants,
	}, nil
}
