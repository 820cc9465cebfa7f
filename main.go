package main

import "github/chapool/go-trader/cmd"

func main() {
	cmd.Execute()
}
