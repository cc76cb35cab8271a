package main

import "emireminder/cmd"

func main() {
	cmd.Execute()
}
