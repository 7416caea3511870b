package main

import "github.com/pfrederiksen/dira-lottery/internal/cli"

func main() {
	cli.Execute()
}
