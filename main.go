package main

import "github.com/brogergvhs/malview/cmd"

func main() {
	cmd.Execute()
}
