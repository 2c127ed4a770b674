package main

import "github.com/hyperloopupv-h8/stools/cmd/stools/cmd"

func main() {
	cmd.Execute()
}
