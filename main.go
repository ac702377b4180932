package main

import "github.com/KaramelBytes/tabloom-cli/cmd"

func main() {
	cmd.Execute()
}
