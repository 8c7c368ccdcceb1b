package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stride-app/stride-server/internal/database"
	"github.com/stride-app/stride-server/internal/server"
	"github.com/stride-app/stride-server/internal/types"
)

const dateLayout = "2006-01-02"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type CreateGroupChatRequest struct {
	Title   string `json:"title"`
	Members []int  `json:"members"`
}

type CreateGroupChatResponse struct {
	Message string `json:"message"`
	ChatId  int    `json:"chat_id"`
}

type AddUserRequest struct {
	UserId int `json:"user_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserInfoRequest struct {
	Name    string   `json:"name"`
	Weight  *float64 `json:"weight"`
	Height  *float64 `json:"height"`
	Sex     string   `json:"sex"`
	Age     *int     `json:"age"`
	Country string   `json:"country"`
}

type UserStatisticRequest struct {
	Calories *float64 `json:"calories"`
	Steps    *int     `json:"steps"`
	Distance *float64 `json:"distance"`
	Date     string   `json:"date"`
}

type FriendRequestRequest struct {
	UserId int `json:"user_id"`
}

func (s *StrideApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *StrideApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *StrideApp) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJson(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		s.writeJson(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "email and password are required"})
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	_, err = s.db.CreateAccount(database.CreateAccountParams{
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			s.writeJson(w, http.StatusConflict, AuthResponse{Success: false, Message: "email already registered"})
			return
		}
		s.log.Println("create account:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, AuthResponse{Success: true, Message: "user registered"})
}

func (s *StrideApp) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJson(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		s.writeJson(w, http.StatusBadRequest, AuthResponse{Success: false, Message: "email and password are required"})
		return
	}

	user, err := s.db.GetAccountByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeJson(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "invalid email or password"})
			return
		}
		s.log.Println("get account:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(user.PasswordHash, req.Password) {
		s.writeJson(w, http.StatusUnauthorized, AuthResponse{Success: false, Message: "invalid email or password"})
		return
	}

	tok, err := s.tokens.Issue(user.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, AuthResponse{Success: true, Message: "login successful", Token: tok})
}

// logout exists for client symmetry: tokens are stateless and remain valid
// until they expire, so there is nothing to revoke server side.
func (s *StrideApp) logout(w http.ResponseWriter, _ *http.Request) {
	s.writeJson(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

func (s *StrideApp) tokenVerify(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{
		"message": "token valid for user " + strconv.Itoa(userId),
		"valid":   true,
	})
}

func (s *StrideApp) getGroupChats(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	previews, err := s.db.ListChatsForUser(userId)
	if err != nil {
		s.log.Println("list chats:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chats := make([]types.ChatSummary, 0, len(previews))
	for _, p := range previews {
		chats = append(chats, types.ChatSummary{
			Id:          p.Id,
			Title:       p.Title,
			LastMessage: p.LastMessage,
		})
	}

	s.writeJson(w, http.StatusOK, chats)
}

func (s *StrideApp) createGroupChat(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateGroupChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chat, err := s.db.CreateChatWithMembers(req.Title, userId, req.Members)
	if err != nil {
		s.log.Println("create chat:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, CreateGroupChatResponse{
		Message: "group chat created",
		ChatId:  chat.Id,
	})
}

func (s *StrideApp) chatIdFromPath(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

func (s *StrideApp) joinGroupChat(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chatId, err := s.chatIdFromPath(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetChat(chatId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	created, err := s.db.AddMember(userId, chatId)
	if err != nil {
		s.log.Println("add member:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !created {
		s.writeJson(w, http.StatusOK, MessageResponse{Message: "already a member"})
		return
	}

	s.writeJson(w, http.StatusCreated, MessageResponse{Message: "joined chat successfully"})
}

func (s *StrideApp) addUserToChat(w http.ResponseWriter, r *http.Request) {
	if _, ok := UserId(r.Context()); !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chatId, err := s.chatIdFromPath(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetChat(chatId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAccountById(req.UserId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	created, err := s.db.AddMember(req.UserId, chatId)
	if err != nil {
		s.log.Println("add member:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !created {
		s.writeJson(w, http.StatusOK, MessageResponse{Message: "user already in chat"})
		return
	}

	s.writeJson(w, http.StatusCreated, MessageResponse{Message: "user added to chat"})
}

func (s *StrideApp) getGroupChatDetail(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chatId, err := s.chatIdFromPath(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chat, err := s.db.GetChat(chatId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	member, err := s.db.IsMember(userId, chatId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if !member {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	members, err := s.db.ListMembers(chatId)
	if err != nil {
		s.log.Println("list members:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.ListMessages(chatId)
	if err != nil {
		s.log.Println("list messages:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	detail := types.ChatDetail{
		Id:           chat.Id,
		Title:        chat.Title,
		Participants: make([]string, 0, len(members)),
		Messages:     make([]types.ChatMessage, 0, len(dbMessages)),
	}
	for _, m := range members {
		detail.Participants = append(detail.Participants, m.Name)
	}
	for _, m := range dbMessages {
		detail.Messages = append(detail.Messages, types.ChatMessage{
			Id:        m.Id,
			Content:   m.Content,
			Sender:    m.SenderName,
			Timestamp: m.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, detail)
}

func (s *StrideApp) getUserInfo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	profile, err := s.db.GetProfile(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.Profile{
		UserId:  profile.UserId,
		Name:    profile.Name,
		Weight:  profile.Weight,
		Height:  profile.Height,
		Sex:     profile.Sex,
		Age:     profile.Age,
		Country: profile.Country,
	})
}

func (s *StrideApp) checkUserInfo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetProfile(userId); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeJson(w, http.StatusNotFound, map[string]bool{"filled": false})
			return
		}
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]bool{"filled": true})
}

func (s *StrideApp) updateUserInfo(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UserInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" || req.Weight == nil || req.Height == nil || req.Sex == "" || req.Age == nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.UpsertProfile(database.UpsertProfileParams{
		UserId:  userId,
		Name:    req.Name,
		Weight:  *req.Weight,
		Height:  *req.Height,
		Sex:     req.Sex,
		Age:     *req.Age,
		Country: req.Country,
	})
	if err != nil {
		s.log.Println("upsert profile:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *StrideApp) addUserStatistic(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UserStatisticRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Calories == nil || req.Steps == nil || req.Distance == nil || req.Date == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err = s.db.AddDailyStat(database.DailyStatParams{
		UserId:   userId,
		Calories: *req.Calories,
		Steps:    *req.Steps,
		Distance: *req.Distance,
		Date:     date,
	})
	if err != nil {
		s.log.Println("add daily stat:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, AuthResponse{Success: true, Message: "statistics updated"})
}

func (s *StrideApp) getUserStatistics(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var (
		dbStats []database.DailyStat
		err     error
	)

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, parseErr := time.Parse(dateLayout, dateStr)
		if parseErr != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		dbStats, err = s.db.GetDailyStatsByDate(userId, date)
	} else {
		dbStats, err = s.db.ListDailyStats(userId)
	}

	if err != nil {
		s.log.Println("list daily stats:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	result := make([]types.DailyStat, 0, len(dbStats))
	for _, st := range dbStats {
		result = append(result, types.DailyStat{
			Calories: st.Calories,
			Steps:    st.Steps,
			Distance: st.Distance,
			Date:     st.Date.Format(dateLayout),
		})
	}

	s.writeJson(w, http.StatusOK, result)
}

func (s *StrideApp) createFriendRequest(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req FriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserId == 0 || req.UserId == userId {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	_, err := s.db.CreateFriendRequest(userId, req.UserId)
	if err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, database.ErrDuplicate):
			errResp = NewConflictError()
		case errors.Is(err, database.ErrNotFound):
			errResp = NewNotFoundError()
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, MessageResponse{Message: "friend request sent"})
}

func (s *StrideApp) acceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	friendshipId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.AcceptFriendRequest(friendshipId, userId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, MessageResponse{Message: "friend request accepted"})
}

func (s *StrideApp) listFriends(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	friendships, err := s.db.ListFriends(userId)
	if err != nil {
		s.log.Println("list friends:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	friends := make([]types.Friend, 0, len(friendships))
	for _, f := range friendships {
		friends = append(friends, types.Friend{
			Id:       f.Id,
			UserId:   f.UserId,
			Name:     f.Name,
			Accepted: f.Accepted,
		})
	}

	s.writeJson(w, http.StatusOK, friends)
}

// serveWs upgrades the connection without authenticating it: the realtime
// protocol re-verifies the credential carried by each event instead of
// performing a connection-level handshake.
func (s *StrideApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
