package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"fieldkit/internal/deploy"
)

var _ pflag.Value = (*grantList)(nil)

// grantList collects repeated --grant NAME[=r|rw|w] flags. "w" implies read.
type grantList []deploy.PermissionRequest

func (g *grantList) String() string {
	parts := make([]string, len(*g))
	for i, r := range *g {
		access := "r"
		if r.Editable {
			access = "rw"
		}
		parts[i] = r.Grantee + "=" + access
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (g *grantList) Set(value string) error {
	name, access, hasAccess := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("grant %q: grantee name is empty", value)
	}
	req := deploy.PermissionRequest{Grantee: name, Readable: true}
	if hasAccess {
		switch strings.ToLower(strings.TrimSpace(access)) {
		case "r", "read":
			// read-only
		case "rw", "w", "edit":
			req.Editable = true
		default:
			return fmt.Errorf("grant %q: access must be r or rw", value)
		}
	}
	*g = append(*g, req)
	return nil
}

func (g *grantList) Type() string { return "grant" }
