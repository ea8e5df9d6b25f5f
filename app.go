package main

import "github.com/masmgr/gitdrill/cmd"

func main() {
	cmd.Run()
}
