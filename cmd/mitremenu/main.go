// Command mitremenu is an operator console for running MITRE ATT&CK
// adversary-emulation tests and reviewing what the EDR saw.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"mitremenu/internal/debug"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, defaultProgramFactory))
}

// exitCodeError ends the process with code without printing anything; the
// command that returned it has already reported the outcome.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer, factory programFactory) int {
	defer debug.Close()

	root := newRootCmd(factory)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	var exit exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
