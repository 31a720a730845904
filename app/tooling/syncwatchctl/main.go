package main

import "github.com/abumaher/syncwatch/app/tooling/syncwatchctl/cmd"

func main() {
	cmd.Execute()
}
