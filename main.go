package main

import "github.com/tharsikan/shop-web-app-backend/cmd"

func main() {
	cmd.Execute()
}
