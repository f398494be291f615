package main

import "github.com/iglide21/BabyBuddy-sub001/internal/cli"

func main() {
	cli.Execute()
}
