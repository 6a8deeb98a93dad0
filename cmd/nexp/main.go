package main

import "github.com/withgalaxy/nexp/pkg/cli"

func main() {
	cli.Execute()
}
