// Command tinytiff inspects, validates and creates uncompressed TIFF files.
package main

import (
	"os"

	"github.com/robert-malhotra/go-tinytiff/cmd/tinytiff/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
