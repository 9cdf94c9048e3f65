// Command fieldkit creates custom fields in an org and grants access to them.
package main

import (
	"os"

	"fieldkit/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
