package main

import (
	"github.com/moodb/moodb/cmd/moo/cmd"
)

func main() {
	cmd.Execute()
}
