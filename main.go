package main

import (
	"github.com/lowvis/magnifier/cmd"

	// Registers the Win32 backend via init on Windows builds.
	_ "github.com/lowvis/magnifier/internal/platform/windows"
)

func main() {
	cmd.Execute()
}
