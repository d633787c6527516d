package main

import (
	"log"

	"github.com/philips413/liar-game/internal/server"
)

func main() {
	if err := server.Run(); err != nil {
		log.Fatal(err.Error())
	}
}
