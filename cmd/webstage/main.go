package main

import "github.com/osinin/webstage/cmd/webstage/cmd"

func main() {
	cmd.Execute()
}
