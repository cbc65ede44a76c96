package main

import "github.com/lukman83/ammo-bundler/cmd"

func main() {
	cmd.Execute()
}
