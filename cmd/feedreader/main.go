package main

import "feedreader/internal/cli"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.Execute(version, buildTime)
}
