package main

import (
	wrfupcmd "github.com/initializ/wrfup/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	wrfupcmd.SetVersionInfo(version, commit)
	wrfupcmd.Execute()
}
