// Command chunkctl manages a chunk deck from the terminal: seeding, imports
// and exports, due lists, reviews and statistics.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
