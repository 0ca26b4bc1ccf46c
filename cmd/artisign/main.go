// Command artisign signs release artifacts through a remote signing service.
package main

import (
	"os"

	"github.com/meigma/artisign/cmd/artisign/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
