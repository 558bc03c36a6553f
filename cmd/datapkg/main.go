package main

import (
	"github.com/nipy/data-packaging/cmd/datapkg/cmd"
)

func main() {
	cmd.Execute()
}
