package database

import (
	"database/sql"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Project struct {
	Id          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:100;not null"`
	Description string
	// Comma or newline delimited list of technology names, e.g.
	// "Python, Django, Redis".
	Technologies string `gorm:"size:200"`
	Image        string
	LiveLink     sql.NullString
	SourceLink   sql.NullString
	CreatedAt    time.Time
	IsVisible    bool `gorm:"default:true"`
}

// TechnologyList splits the delimited technologies string into trimmed,
// non-empty entries.
func (p *Project) TechnologyList() []string {
	normalized := strings.ReplaceAll(p.Technologies, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", ",")

	var out []string
	for _, item := range strings.Split(normalized, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

type Note struct {
	Id      uint   `gorm:"primaryKey"`
	Title   string `gorm:"size:200;not null"`
	Content string
	// ["python", "django"]
	Tags      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
}

type Post struct {
	Id        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	Content   string
	CreatedAt time.Time
}

const (
	RoleUser = "user"
	RoleAI   = "ai"
)

type ChatMessage struct {
	Id        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"index"`
	Role      string `gorm:"size:10;not null"` // 'user' or 'ai'
	Content   string
	CreatedAt time.Time
}
