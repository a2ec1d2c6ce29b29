package main

import "github.com/khrees2412/talentmatch/cmd"

func main() {
	cmd.Execute()
}
