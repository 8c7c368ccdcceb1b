package database

import "time"

type User struct {
	Id           int
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
}

type Profile struct {
	UserId  int
	Name    string
	Weight  float64
	Height  float64
	Sex     string
	Age     int
	Country string
}

type DailyStat struct {
	Id       int
	UserId   int
	Calories float64
	Steps    int
	Distance float64
	Date     time.Time
}

type Chat struct {
	Id        int
	Title     string
	CreatedAt time.Time
}

type Member struct {
	UserId   int
	Name     string
	JoinedAt time.Time
}

type Message struct {
	Id        int
	ChatId    int
	SenderId  int
	Content   string
	CreatedAt time.Time
}

type MessageWithSender struct {
	Message
	SenderName string
}

// ChatPreview backs the chat list view. LastMessage is empty for a chat
// with no messages.
type ChatPreview struct {
	Id          int
	Title       string
	LastMessage string
}

type Friendship struct {
	Id        int
	UserId    int
	Name      string
	Accepted  bool
	CreatedAt time.Time
}

type CreateAccountParams struct {
	EmailAddress string
	PasswordHash string
}

type UpsertProfileParams struct {
	UserId  int
	Name    string
	Weight  float64
	Height  float64
	Sex     string
	Age     int
	Country string
}

type DailyStatParams struct {
	UserId   int
	Calories float64
	Steps    int
	Distance float64
	Date     time.Time
}
