package main

import (
	"log"

	"github.com/thiagokokada/gitfs-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitfs-go: %v", err)
	}
}
