package deploy

import (
	"context"
	"log/slog"
	"strings"

	"fieldkit/internal/metadata"
)

// granteeKinds is the fixed trial order for resolving a grantee name.
var granteeKinds = [2]metadata.Kind{metadata.KindPermissionSet, metadata.KindProfile}

// PermissionEngine grants field-level security to grantees one at a time.
type PermissionEngine struct {
	logger *slog.Logger
}

// NewPermissionEngine returns a PermissionEngine. A nil logger discards output.
func NewPermissionEngine(logger *slog.Logger) *PermissionEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PermissionEngine{logger: logger}
}

// Assign grants each request's access on every field in fields. Grantees are
// processed sequentially and independently; a failure for one never stops
// the rest. Outcomes are returned in request order.
func (e *PermissionEngine) Assign(ctx context.Context, conn Connection, fields []string, requests []PermissionRequest) []GrantOutcome {
	if len(fields) == 0 || len(requests) == 0 {
		return nil
	}
	outcomes := make([]GrantOutcome, 0, len(requests))
	for _, req := range requests {
		outcomes = append(outcomes, e.assignOne(ctx, conn, fields, req))
	}
	return outcomes
}

func (e *PermissionEngine) assignOne(ctx context.Context, conn Connection, fields []string, req PermissionRequest) GrantOutcome {
	grant := buildGrant(req, fields)
	attempt := func(ctx context.Context, kind metadata.Kind) (metadata.SaveResult, error) {
		results, err := conn.Update(ctx, kind, grant)
		if err != nil {
			return metadata.SaveResult{}, err
		}
		return pickResult(results, req.Grantee), nil
	}

	res, err := applyWithFallback(ctx, granteeKinds, attempt, e.logger.With("grantee", req.Grantee))
	if err != nil {
		e.logger.Warn("grant failed", "grantee", req.Grantee, "error", err)
		return GrantOutcome{Grantee: req.Grantee, Message: err.Error()}
	}
	if !res.Result.Success {
		msg := res.Result.ErrorMessage()
		if msg == "" {
			msg = "update reported failure without errors"
		}
		e.logger.Warn("grant rejected", "grantee", req.Grantee, "kind", res.Kind, "error", msg)
		return GrantOutcome{Grantee: req.Grantee, Message: msg}
	}
	e.logger.Info("grant applied", "grantee", req.Grantee, "kind", res.Kind, "fields", len(fields))
	return GrantOutcome{Grantee: req.Grantee, Kind: res.Kind, Success: true}
}

func buildGrant(req PermissionRequest, fields []string) *metadata.PermissionGrant {
	perms := make([]metadata.FieldPermission, 0, len(fields))
	for _, f := range fields {
		perms = append(perms, metadata.FieldPermission{
			Field:    f,
			Readable: req.Readable,
			Editable: req.Editable,
		})
	}
	return &metadata.PermissionGrant{FullName: req.Grantee, FieldPermissions: perms}
}

// pickResult returns the outcome for name, falling back to the first one.
// An empty list is a declared failure.
func pickResult(results []metadata.SaveResult, name string) metadata.SaveResult {
	for _, r := range results {
		if r.FullName == name {
			return r
		}
	}
	if len(results) > 0 {
		return results[0]
	}
	return metadata.SaveResult{
		FullName: name,
		Errors:   []metadata.SaveError{{Message: "no result returned"}},
	}
}

// fallbackResult tags an outcome with the kind that produced it.
type fallbackResult struct {
	Kind   metadata.Kind
	Result metadata.SaveResult
}

// applyWithFallback runs attempt against kinds[0] and, if that call errors
// or declares failure, against kinds[1]. The second attempt's outcome is
// final. An error is returned only when the second attempt itself errors.
func applyWithFallback(
	ctx context.Context,
	kinds [2]metadata.Kind,
	attempt func(context.Context, metadata.Kind) (metadata.SaveResult, error),
	logger *slog.Logger,
) (fallbackResult, error) {
	res, err := attempt(ctx, kinds[0])
	switch {
	case err != nil:
		logger.Debug("primary kind errored, falling back", "kind", kinds[0], "fallback", kinds[1], "error", err)
		return fallbackTo(ctx, kinds[1], attempt)
	case !res.Success:
		logger.Debug("primary kind declared failure, falling back", "kind", kinds[0], "fallback", kinds[1],
			"error", strings.TrimSpace(res.ErrorMessage()))
		return fallbackTo(ctx, kinds[1], attempt)
	}
	return fallbackResult{Kind: kinds[0], Result: res}, nil
}

func fallbackTo(
	ctx context.Context,
	kind metadata.Kind,
	attempt func(context.Context, metadata.Kind) (metadata.SaveResult, error),
) (fallbackResult, error) {
	res, err := attempt(ctx, kind)
	if err != nil {
		return fallbackResult{Kind: kind}, err
	}
	return fallbackResult{Kind: kind, Result: res}, nil
}

// JoinLines renders outcomes one per line.
func JoinLines(outcomes []GrantOutcome) string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		lines = append(lines, o.Line())
	}
	return strings.Join(lines, "\n")
}
