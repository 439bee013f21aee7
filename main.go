package main

import "github.com/ai-advisor/server/cmd"

func main() {
	cmd.Execute()
}
