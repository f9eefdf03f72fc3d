// main is the entry point for the sisimcp CLI.
package main

import (
	"fmt"
	"os"

	"github.com/jiayuqiu/sisi-mcp/cmd"
	"github.com/jiayuqiu/sisi-mcp/internal/contract"
)

func main() {
	err := cmd.Execute()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Cannot stop profiling", perr)
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
