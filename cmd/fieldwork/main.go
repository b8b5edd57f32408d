package main

import "github.com/bornholm/fieldwork/internal/command"

func main() {
	command.Execute()
}
