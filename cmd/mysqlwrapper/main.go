// Command mysqlwrapper runs CRUD statements from the command line or serves
// them over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Patrick-Hull/MySQLWrapper/cmd/mysqlwrapper/commands"
)

// Version is set by the build.
var Version = "dev"

func main() {
	root := commands.NewRootCommand(Version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, commands.ErrOperationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
