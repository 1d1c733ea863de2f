package main

import "inscraper/cmd"

func main() {
	cmd.Execute()
}
