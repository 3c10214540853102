package main

import "github.com/fmuoria/AI-Interview-agent/internal/cli"

func main() {
	cli.Execute()
}
