// file: main.go
// version: 1.0.0
// guid: 1c6e8b3a-4d97-40f2-b5a8-7e0c2d9f4a61

package main

import (
	"os"

	"github.com/mhagen/dealerfinder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
