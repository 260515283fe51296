package main

import "github.com/teamradar/github-reports/cmd"

func main() {
	cmd.Execute()
}
