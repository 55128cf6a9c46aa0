package main

import (
	"admin-welcome-modal/internal/app/server"
	"admin-welcome-modal/internal/config"
)

func main() {
	cfg := config.Load()
	server.Run(cfg)
}
