package main

import "github.com/stonelib/library-management/cmd"

func main() {
	cmd.Execute()
}
