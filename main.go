package main

import "sharpcheck/cmd"

func main() {
	cmd.Execute()
}
