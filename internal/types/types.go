package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

type Profile struct {
	UserId  int     `json:"id"`
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Height  float64 `json:"height"`
	Sex     string  `json:"sex"`
	Age     int     `json:"age"`
	Country string  `json:"country"`
}

type DailyStat struct {
	Calories float64 `json:"calories"`
	Steps    int     `json:"steps"`
	Distance float64 `json:"distance"`
	Date     string  `json:"date"`
}

// ChatSummary is one row in a user's chat list. LastMessage is the content
// of the most recent message, or the empty string for a chat with no
// messages yet.
type ChatSummary struct {
	Id          int    `json:"id"`
	Title       string `json:"title"`
	LastMessage string `json:"lastMessage"`
}

type ChatDetail struct {
	Id           int           `json:"id"`
	Title        string        `json:"title"`
	Participants []string      `json:"participants"`
	Messages     []ChatMessage `json:"messages"`
}

type ChatMessage struct {
	Id        int       `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

type Friend struct {
	Id       int    `json:"id"`
	UserId   int    `json:"user_id"`
	Name     string `json:"name"`
	Accepted bool   `json:"accepted"`
}
