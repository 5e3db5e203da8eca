package main

import "github.com/mvp-joe/doclint/internal/cli"

func main() {
	cli.Execute()
}
