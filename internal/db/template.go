package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTemplateSlug is assigned to pages that never picked a template.
const DefaultTemplateSlug = "default"

// Template is an admin-authored HTML skeleton holding the recognized
// placeholders. Its markup is trusted; only substituted data is escaped.
type Template struct {
	ID        string `gorm:"primaryKey;size:36"`
	Slug      string `gorm:"uniqueIndex;size:48;not null"`
	Name      string `gorm:"size:100;not null"`
	HTML      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate 在创建前填充 UUID 主键。
func (t *Template) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

const defaultTemplateHTML = `<!doctype html>
<html lang="fr">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{display_name}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f4f4f5;color:#18181b}
main{max-width:480px;margin:0 auto;padding:48px 24px;text-align:center}
.avatar{width:96px;height:96px;border-radius:50%;object-fit:cover}
.avatar--initials{width:96px;height:96px;border-radius:50%;background:#3f3f46;color:#fff;display:inline-flex;align-items:center;justify-content:center;font-size:40px}
h1{font-size:24px;margin:16px 0 8px}
p.bio{color:#52525b;white-space:pre-line}
ul.links{list-style:none;padding:0;margin:32px 0 0}
.link-item{margin:12px 0}
.link{display:block;padding:14px 20px;border-radius:12px;background:#fff;color:inherit;text-decoration:none;box-shadow:0 1px 3px rgba(0,0,0,.08)}
</style>
</head>
<body>
<main>
{{avatar_block}}
<h1>{{display_name}}</h1>
<p class="bio">{{bio}}</p>
<ul class="links">{{links}}</ul>
</main>
</body>
</html>`
