package main

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"portfolio-backend/cmd"
	"portfolio-backend/internal/chat"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
)

// Backfills tags for notes that do not have any, asking the configured LLM
// for two comma-separated keywords per note.
func main() {
	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	generator, err := chat.NewGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	ctx := context.Background()

	notes, err := database.NotesWithoutTags(ctx, db)
	if err != nil {
		log.Fatalf("Failed to query notes: %v", err)
	}
	if len(notes) == 0 {
		log.Println("All notes already have tags. Nothing to do.")
		return
	}

	log.Printf("Found %d notes without tags. Starting backfill...", len(notes))

	bar := progressbar.NewOptions(len(notes),
		progressbar.OptionSetDescription("backfilling tags"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	for _, note := range notes {
		bar.Add(1) //nolint:errcheck

		if strings.TrimSpace(note.Content) == "" {
			log.Printf("skipping note %q: no content", note.Title)
			continue
		}

		keywords, err := extractKeywords(ctx, generator, note.Content)
		if err != nil {
			// A dead LLM server fails every remaining note too; stop here.
			log.Printf("could not reach LLM for note %q: %v", note.Title, err)
			log.Println("Aborting backfill. Please ensure the LLM server is running and accessible.")
			break
		}
		if len(keywords) == 0 {
			log.Printf("LLM returned no keywords for note %q", note.Title)
			continue
		}

		tags, err := json.Marshal(keywords)
		if err != nil {
			log.Fatalf("could not marshal tags: %v", err)
		}
		if err := db.WithContext(ctx).Model(&note).Update("tags", tags).Error; err != nil {
			log.Fatalf("could not update note %q: %v", note.Title, err)
		}

		log.Printf("tagged note %q: %s", note.Title, strings.Join(keywords, ", "))
	}

	log.Println("Backfill process complete.")
}

const keywordPrompt = "다음 텍스트에서 가장 중요한 핵심 키워드 2개를 쉼표(,)로 구분하여 추출해 주세요. " +
	"다른 설명 없이 키워드만 응답해야 합니다. 예: 파이썬,장고\n\n텍스트: "

func extractKeywords(ctx context.Context, generator chat.Generator, content string) ([]string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, keywordPrompt+content),
	}

	raw, err := generator.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords, nil
}
