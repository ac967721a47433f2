// Command avcme estimates H.264 macroblock motion between image frames and
// inspects the stored motion fields.
//
// Usage:
//
//	avcme estimate [flags] <cur> <ref0> [ref1]   Estimate a P or B motion field
//	avcme inspect [flags] <field.mvz>            Summarize a stored motion field
//	avcme version                                Print version information
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "avcme: %v\n", err)
		os.Exit(1)
	}
}
