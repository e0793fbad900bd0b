package main

import "github.com/algolovers/newsletter-console-services/cmd"

func main() {
	cmd.Execute()
}
