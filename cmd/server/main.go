package main

import "enbapp/internal/server"

func main() {
	server.ApiInit()
}
