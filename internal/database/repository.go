package database

import "time"

type StrideRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(userId int) (User, error)
	GetAccountByEmail(email string) (User, error)

	UpsertProfile(params UpsertProfileParams) error
	GetProfile(userId int) (Profile, error)
	DisplayName(userId int) (string, error)

	AddDailyStat(params DailyStatParams) error
	ListDailyStats(userId int) ([]DailyStat, error)
	GetDailyStatsByDate(userId int, date time.Time) ([]DailyStat, error)

	CreateChatWithMembers(title string, creatorId int, memberIds []int) (Chat, error)
	GetChat(chatId int) (Chat, error)
	IsMember(userId, chatId int) (bool, error)
	AddMember(userId, chatId int) (bool, error)
	ListMembers(chatId int) ([]Member, error)
	ListChatsForUser(userId int) ([]ChatPreview, error)

	CreateMessage(chatId, senderId int, content string) (Message, error)
	ListMessages(chatId int) ([]MessageWithSender, error)

	CreateFriendRequest(requesterId, addresseeId int) (Friendship, error)
	AcceptFriendRequest(friendshipId, addresseeId int) error
	ListFriends(userId int) ([]Friendship, error)
}
