package main

import "github.com/pverge/blindtest/internal/cli"

func main() {
	cli.Execute()
}
