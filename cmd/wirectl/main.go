package main

import "httpbridge-core/internal/cli"

func main() {
	cli.Execute()
}
