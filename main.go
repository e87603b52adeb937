package main

import "github.com/mselser95/restock-sniper/cmd"

func main() {
	cmd.Execute()
}
