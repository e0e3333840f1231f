package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/handlers"
	"p9e.in/prodtrack/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	config.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Pre-create today's draft forms in the background.
	go handlers.NewFormScheduler().StartScheduler()

	handler := routes.RegisterRoutes()
	handlerWithCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	}).Handler(handler)

	log.Println("Server starting at port", port)
	log.Fatal(http.ListenAndServe(":"+port, handlerWithCORS))
}
