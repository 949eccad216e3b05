package main

import "github.com/webhookx-io/hookshot/cmd"

func main() {
	cmd.Execute()
}
