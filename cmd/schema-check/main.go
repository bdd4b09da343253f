package main

import (
	"schema-check/internal/cli"
)

func main() {
	cli.Execute()
}
