// Command validate checks the map files in the maps directory, or the files
// named on the command line, and exits with non-zero status if any are
// invalid.
package main

import (
	"fmt"
	"os"

	"github.com/wricardo/lasertank/validate"
)

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		var err error
		files, err = validate.MapFiles("maps")
		if err != nil {
			fmt.Printf("Error finding map files: %v\n", err)
			os.Exit(1)
		}
	}

	results := make([]validate.Result, 0, len(files))
	for _, file := range files {
		results = append(results, validate.Map(file))
	}
	if !validate.WriteReport(os.Stdout, results) {
		os.Exit(1)
	}
}
