// Command memoprop demonstrates, records and monitors memoized attributes.
package main

import (
	"github.com/sarchlab/memoprop/cli"
	"github.com/tebeka/atexit"
)

func main() {
	atexit.Exit(cli.Execute())
}
