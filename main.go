package main

import "github.com/fakeyudi/refhistory/cmd"

func main() {
	cmd.Execute()
}
