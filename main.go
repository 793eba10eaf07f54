package main

import "github.com/gridkv/gridkv-go/cmd"

func main() {
	cmd.Execute()
}
