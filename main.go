package main

import "trustwatch/cmd"

func main() {
	cmd.Execute()
}
