package main

import "github.com/curaious/uno/cmd"

func main() {
	cmd.Execute()
}
