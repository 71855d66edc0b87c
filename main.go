package main

import "github.com/KaramelBytes/quizloom-cli/cmd"

func main() {
	cmd.Execute()
}
