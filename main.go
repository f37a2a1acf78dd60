package main

import (
	"log"

	"github.com/spigell/vendor-radar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
