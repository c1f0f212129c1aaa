package main

import "gdbdeploy/cmd"

func main() {
	cmd.Execute()
}
