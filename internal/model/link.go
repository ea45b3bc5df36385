package model

import (
	"time"
)

// Link maps one short code to its target URL and carries its click stats.
// Code and Target are write-once; only the click columns change after insert.
type Link struct {
	Code        string     `gorm:"primaryKey;size:8;check:chk_links_code_len,length(code) BETWEEN 6 AND 8" json:"code"`
	Target      string     `gorm:"type:text;not null;index" json:"target"`
	CreatedAt   time.Time  `json:"created_at"`
	TotalClicks int64      `gorm:"not null;default:0" json:"total_clicks"`
	LastClicked *time.Time `json:"last_clicked"`
}

// TableName pins the table name
func (Link) TableName() string {
	return "links"
}
