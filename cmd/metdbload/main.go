package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/metdbload/internal/cli"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(metdbload.ExitPanic)
		}
	}()

	if os.Getenv("METDBLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(metdbload.ExitCodeForError(err))
	}
}
