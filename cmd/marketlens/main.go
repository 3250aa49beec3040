package main

import (
	"market-lens/internal/cli"
)

func main() {
	cli.Execute()
}
