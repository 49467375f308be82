package main

import "github.com/codeatlas-dev/codeatlas/internal/cli"

func main() {
	cli.Execute()
}
