package main

import "github.com/RyanBlaney/barksync-analyzer/cmd"

func main() {
	cmd.Execute()
}
