package main

import "github.com/clewlabs/memoria/cmd/memoria/cli"

func main() {
	cli.Execute()
}
