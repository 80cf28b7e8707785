package main

import "company-manager/cmd"

func main() {
	cmd.Execute()
}
