package main

import (
	"fmt"
	"os"

	_ "github.com/brimdata/sqm/cmd/sqm/compile"
	"github.com/brimdata/sqm/cmd/sqm/root"
)

func main() {
	if err := root.Sqm.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
