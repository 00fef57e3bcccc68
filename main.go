package main

import "github.com/iksnae/mirova/cmd"

func main() {
	cmd.Execute()
}
