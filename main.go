package main

import "github.com/xvierd/flowboard/cmd"

func main() {
	cmd.Execute()
}
