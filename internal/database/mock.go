package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockStrideRepository struct {
	mock.Mock
}

func (m *MockStrideRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockStrideRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStrideRepository) GetAccountById(userId int) (User, error) {
	args := m.Called(userId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStrideRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockStrideRepository) UpsertProfile(params UpsertProfileParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockStrideRepository) GetProfile(userId int) (Profile, error) {
	args := m.Called(userId)
	return args.Get(0).(Profile), args.Error(1)
}
func (m *MockStrideRepository) DisplayName(userId int) (string, error) {
	args := m.Called(userId)
	return args.String(0), args.Error(1)
}
func (m *MockStrideRepository) AddDailyStat(params DailyStatParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockStrideRepository) ListDailyStats(userId int) ([]DailyStat, error) {
	args := m.Called(userId)
	return args.Get(0).([]DailyStat), args.Error(1)
}
func (m *MockStrideRepository) GetDailyStatsByDate(userId int, date time.Time) ([]DailyStat, error) {
	args := m.Called(userId, date)
	return args.Get(0).([]DailyStat), args.Error(1)
}
func (m *MockStrideRepository) CreateChatWithMembers(title string, creatorId int, memberIds []int) (Chat, error) {
	args := m.Called(title, creatorId, memberIds)
	return args.Get(0).(Chat), args.Error(1)
}
func (m *MockStrideRepository) GetChat(chatId int) (Chat, error) {
	args := m.Called(chatId)
	return args.Get(0).(Chat), args.Error(1)
}
func (m *MockStrideRepository) IsMember(userId, chatId int) (bool, error) {
	args := m.Called(userId, chatId)
	return args.Bool(0), args.Error(1)
}
func (m *MockStrideRepository) AddMember(userId, chatId int) (bool, error) {
	args := m.Called(userId, chatId)
	return args.Bool(0), args.Error(1)
}
func (m *MockStrideRepository) ListMembers(chatId int) ([]Member, error) {
	args := m.Called(chatId)
	return args.Get(0).([]Member), args.Error(1)
}
func (m *MockStrideRepository) ListChatsForUser(userId int) ([]ChatPreview, error) {
	args := m.Called(userId)
	return args.Get(0).([]ChatPreview), args.Error(1)
}
func (m *MockStrideRepository) CreateMessage(chatId, senderId int, content string) (Message, error) {
	args := m.Called(chatId, senderId, content)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockStrideRepository) ListMessages(chatId int) ([]MessageWithSender, error) {
	args := m.Called(chatId)
	return args.Get(0).([]MessageWithSender), args.Error(1)
}
func (m *MockStrideRepository) CreateFriendRequest(requesterId, addresseeId int) (Friendship, error) {
	args := m.Called(requesterId, addresseeId)
	return args.Get(0).(Friendship), args.Error(1)
}
func (m *MockStrideRepository) AcceptFriendRequest(friendshipId, addresseeId int) error {
	args := m.Called(friendshipId, addresseeId)
	return args.Error(0)
}
func (m *MockStrideRepository) ListFriends(userId int) ([]Friendship, error) {
	args := m.Called(userId)
	return args.Get(0).([]Friendship), args.Error(1)
}
