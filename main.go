package main

import "github.com/wkalt/bintree/cli/cmd"

func main() {
	cmd.Execute()
}
