package main

import "github.com/sadopc/pomotrack/cmd"

func main() {
	cmd.Execute()
}
