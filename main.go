package main

import "github.com/atikulmunna/sieve/internal/cmd"

func main() {
	cmd.Execute()
}
