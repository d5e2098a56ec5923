package main

import "github.com/weddingguard/backend/cmd"

func main() {
	cmd.Execute()
}
