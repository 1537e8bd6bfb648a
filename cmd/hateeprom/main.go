package main

import "github.com/OpenTraceLab/OpenTraceEEPROM/cmd/hateeprom/cmd"

func main() {
	cmd.Execute()
}
