package main

import "github.com/voxboard/voxboard/cmd/voxboard/cmd"

func main() {
	cmd.Execute()
}
