package deploy

import (
	"context"

	"fieldkit/internal/metadata"
)

type updateCall struct {
	kind  metadata.Kind
	grant *metadata.PermissionGrant
}

// fakeConn records calls and replays canned results.
type fakeConn struct {
	createResults []metadata.SaveResult
	createErr     error
	createCalls   [][]metadata.Component

	// update answers Update calls; nil means success for every call.
	update      func(kind metadata.Kind, grantee string) ([]metadata.SaveResult, error)
	updateCalls []updateCall
}

func (f *fakeConn) Create(_ context.Context, kind metadata.Kind, items []metadata.Component) ([]metadata.SaveResult, error) {
	if kind != metadata.KindCustomField {
		panic("unexpected create kind " + kind)
	}
	f.createCalls = append(f.createCalls, items)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResults, nil
}

func (f *fakeConn) Update(_ context.Context, kind metadata.Kind, item metadata.Component) ([]metadata.SaveResult, error) {
	grant := item.(*metadata.PermissionGrant)
	f.updateCalls = append(f.updateCalls, updateCall{kind: kind, grant: grant})
	if f.update == nil {
		return []metadata.SaveResult{{FullName: grant.FullName, Success: true}}, nil
	}
	return f.update(kind, grant.FullName)
}

func (f *fakeConn) updateKinds() []metadata.Kind {
	kinds := make([]metadata.Kind, 0, len(f.updateCalls))
	for _, c := range f.updateCalls {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

func ok(name string) metadata.SaveResult {
	return metadata.SaveResult{FullName: name, Success: true}
}

func failed(name string, msgs ...string) metadata.SaveResult {
	r := metadata.SaveResult{FullName: name}
	for _, m := range msgs {
		r.Errors = append(r.Errors, metadata.SaveError{Message: m})
	}
	return r
}

func staticResolver(conn Connection, err error) Resolver {
	return ResolverFunc(func(context.Context, string, string) (Connection, error) {
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}
