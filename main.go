package main

import "github.com/recdash/recdash/cmd"

func main() {
	cmd.Execute()
}
