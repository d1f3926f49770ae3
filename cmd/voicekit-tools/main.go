// Command voicekit-tools packs ONNX graph files and speaker metadata
// into a .vvm-style voice model archive that cmd/voicekit can load.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
