package main

import (
	"auto-post/cmd"
)

func main() {
	cmd.Execute()
}
