package main

import "github.com/ppiankov/threatstage/internal/cli"

func main() {
	cli.Execute()
}
