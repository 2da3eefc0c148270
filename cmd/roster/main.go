package main

import (
	"os"

	"github.com/noah-isme/student-roster/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultOpener)
	if err := root.Execute(); err != nil {
		code := cli.GetExitCode(err)
		if code == cli.ExitCommandError {
			root.PrintErrln("Error:", err)
		}
		os.Exit(code)
	}
}
