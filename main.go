package main

import (
	"github.com/sw33tLie/upgradefeed/cmd"
)

func main() {
	cmd.Execute()
}
