package main

import "github.com/dhima/notification-dispatcher/internal/cli"

func main() {
	cli.Execute()
}
