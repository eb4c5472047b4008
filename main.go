package main

import "github.com/notargets/gotherm/cmd"

func main() {
	cmd.Execute()
}
