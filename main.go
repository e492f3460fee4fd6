package main

import (
	"github.com/foomo/inertiacms/cmd"
)

func main() {
	cmd.Execute()
}
