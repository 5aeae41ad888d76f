package main

import "github.com/encodeous/netsim/cmd"

func main() {
	cmd.Execute()
}
