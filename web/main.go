package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-kdtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of saved worlds")
	flag.Parse()

	webServer := server.NewServer(*port, *scenesDir)

	log.Printf("KD-tree Raytracer Web Server")
	log.Printf("Try http://localhost:%d/api/scenes", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
