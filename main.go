package main

import "github.com/ShaharFullStack/TheDemo/cmd"

func main() {
	cmd.Execute()
}
