package main

import "quotegen-backend/cmd/cli"

func main() {
	cli.Execute()
}
