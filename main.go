package main

import "github.com/Gdev2986/venda-gestao-nexus-sub002/internal/cli"

func main() {
	cli.Execute()
}
