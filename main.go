package main

import "github.com/KaramelBytes/markboard-cli/cmd"

func main() {
	cmd.Execute()
}
