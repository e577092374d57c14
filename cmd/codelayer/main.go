// Command codelayer runs the message analysis pipeline from the command line.
//
//	codelayer parse "you never listen"
//	echo "Can we swap weekends?" | codelayer parse
//	codelayer scenarios --file internal/codelayer/testdata/scenarios.json
//	codelayer validate --original "you suck" "I need a break."
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "codelayer:", err)
		os.Exit(1)
	}
}
