package main

import "github.com/CosmoTheDev/flowalert/cmd"

func main() {
	cmd.Execute()
}
