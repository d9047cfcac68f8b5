package main

import "github.com/KaramelBytes/assayreport/cmd"

func main() {
	cmd.Execute()
}
