package main

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/kieli-lang/kieli/internal/config"
	"github.com/kieli-lang/kieli/internal/db"
)

func main() {
	// Stdout carries the protocol; logging goes to stderr.
	log.SetOutput(os.Stderr)
	log.SetPrefix("[kieli-lsp] ")

	config.IsLSPMode = true

	instanceId := uuid.NewString()
	log.Printf("Starting Kieli language server %s (instance %s)", config.Version, instanceId)

	database := db.New(db.ServerConfiguration())
	NewLanguageServer(database, os.Stdout).Start()
}
