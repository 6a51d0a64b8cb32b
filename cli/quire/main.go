package main

import (
	"errors"
	"fmt"
	"os"

	quirecmder "github.com/papercomputeco/quire/cmd/quire"
	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/cliui"
)

func main() {
	cmd := quirecmder.NewQuireCmd()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, workspace.ErrReported) {
			fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		}
		os.Exit(1)
	}
}
