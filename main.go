package main

import "portalctl/internal/cli"

func main() {
	cli.Execute()
}
