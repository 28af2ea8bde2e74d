package models

import (
	"time"
)

// Post is a shared blog entry: a title, a description, an outbound link and a thumbnail reference.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `gorm:"not null" json:"image_url"`
	ExternalURL string    `gorm:"not null" json:"external_url"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostView is the read shape of a Post with the owner's handle joined in.
type PostView struct {
	Post
	Owner *Owner `json:"owner,omitempty"`
}

// View projects the post for API responses.
func (p *Post) View() PostView {
	v := PostView{Post: *p}
	if p.Owner != nil {
		v.Owner = &Owner{ID: p.Owner.ID, Username: p.Owner.Username}
	}
	return v
}

// Views projects a slice of posts.
func Views(posts []*Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.View())
	}
	return out
}
