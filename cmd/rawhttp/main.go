// Command rawhttp sends one raw HTTP/1.1 request over plain TCP, TLS or an
// HTTP CONNECT proxy and prints what came back.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rawhttp:", err)
		os.Exit(1)
	}
}
