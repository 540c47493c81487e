package main

import "github.com/sw33tLie/shopscope/cmd"

func main() {
	cmd.Execute()
}
