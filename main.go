package main

import "creatorhub/cmd"

func main() {
	cmd.Execute()
}
