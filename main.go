package main

import "github.com/frahmantamala/fintrack/cmd"

func main() {
	cmd.Execute()
}
