package main

import "github.com/frahmantamala/bodega-inventory/cmd"

func main() {
	cmd.Execute()
}
