package main

import "shopifyapi/internal/cli"

func main() {
	cli.Execute()
}
