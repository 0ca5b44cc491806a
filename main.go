package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cosmorain/internal/cli"
	"cosmorain/internal/term"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ltime)
	defer func() {
		if r := recover(); r != nil {
			term.EmergencyReset(os.Stdout)
			panic(r)
		}
	}()

	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
