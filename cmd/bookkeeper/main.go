// Command bookkeeper reconciles vendor invoice claims against the vendor
// registry and invoice ledger.
package main

import (
	"os"

	"github.com/roach88/bookkeeper/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
