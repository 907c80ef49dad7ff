package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
)

// Creates a blog post from the given title and content.
func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		log.Fatal("usage: newpost <title> <content>")
	}
	title, content := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	post := database.Post{
		Title:     title,
		Content:   strings.ReplaceAll(content, `\n`, "\n"),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Create(&post).Error; err != nil {
		log.Fatalf("Failed to create post: %v", err)
	}

	log.Printf("Successfully created blog post %q (id %d)", post.Title, post.Id)
}
