package main

import "printkit/internal/cli"

func main() {
	cli.Execute()
}
