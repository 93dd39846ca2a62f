package main

import "github.com/siteops/workforce-compliance/cmd"

func main() {
	cmd.Execute()
}
