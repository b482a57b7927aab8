package main

import "github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/cli"

func main() {
	cli.Execute()
}
