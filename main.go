package main

import "github.com/teamtask/taskapi/cmd"

func main() {
	cmd.Execute()
}
