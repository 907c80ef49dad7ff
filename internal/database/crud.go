package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"
)

// ListVisibleProjects returns visible projects ordered by creation time
// descending, at most limit rows. When techFilter is non-empty the result is
// restricted to projects whose technologies string contains the filter as a
// case-insensitive whole word. The match runs in Go so it behaves the same
// on sqlite and postgres. An empty result is not an error.
func ListVisibleProjects(ctx context.Context, db *gorm.DB, techFilter string, limit int) ([]Project, error) {
	query := db.WithContext(ctx).Where("is_visible = ?", true).Order("created_at DESC")
	if techFilter == "" && limit > 0 {
		query = query.Limit(limit)
	}

	var projects []Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("could not query projects: %w", err)
	}

	if techFilter == "" {
		return projects, nil
	}

	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(techFilter) + `\b`)
	if err != nil {
		return nil, fmt.Errorf("could not compile technology filter: %w", err)
	}

	filtered := make([]Project, 0, len(projects))
	for _, p := range projects {
		if pattern.MatchString(p.Technologies) {
			filtered = append(filtered, p)
			if limit > 0 && len(filtered) == limit {
				break
			}
		}
	}
	return filtered, nil
}

func GetProject(ctx context.Context, db *gorm.DB, id uint) (Project, error) {
	var project Project
	err := db.WithContext(ctx).First(&project, "id = ?", id).Error
	return project, err
}

func ListNotes(ctx context.Context, db *gorm.DB) ([]Note, error) {
	var notes []Note
	err := db.WithContext(ctx).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func GetNote(ctx context.Context, db *gorm.DB, id uint) (Note, error) {
	var note Note
	err := db.WithContext(ctx).First(&note, "id = ?", id).Error
	return note, err
}

// NotesWithoutTags returns notes whose tags column is empty, for the
// backfill CLI.
func NotesWithoutTags(ctx context.Context, db *gorm.DB) ([]Note, error) {
	var notes []Note
	err := db.WithContext(ctx).
		Where("tags IS NULL OR tags = ? OR tags = ?", "", "[]").
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

func RecentPosts(ctx context.Context, db *gorm.DB, limit int) ([]Post, error) {
	var posts []Post
	err := db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// DeleteChatMessagesBefore removes chat history older than cutoff. Used by
// the session TTL sweeper.
func DeleteChatMessagesBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) error {
	if err := db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&ChatMessage{}).Error; err != nil {
		return fmt.Errorf("could not delete expired chat messages: %w", err)
	}
	return nil
}
