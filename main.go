package main

import "github.com/theirongolddev/paycycle/cmd"

func main() {
	cmd.Execute()
}
