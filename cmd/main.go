package main

import "storefront/internal/cmd"

func main() {
	cmd.Execute()
}
