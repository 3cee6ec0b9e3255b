package main

import "github.com/declanbyrne/ryanairdump/cmd"

func main() {
	cmd.Execute()
}
