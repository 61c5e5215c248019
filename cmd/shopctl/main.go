package main

import "github.com/terraconstructs/shopadmin/cmd/shopctl/cmd"

func main() {
	cmd.Execute()
}
