package main

import "github.com/freefinder/apiserver/cmd"

func main() {
	cmd.Execute()
}
