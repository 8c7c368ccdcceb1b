package database

import (
	"fmt"
	"time"
)

const displayNameExpr = "COALESCE(p.name, 'User ' || a.id)"

func (db *PgStrideRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (email, password_hash, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, email, created_at",
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.EmailAddress,
		&u.CreatedAt,
	)

	return u, mapError(err)
}

func (db *PgStrideRepository) GetAccountById(userId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, email, created_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		userId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.EmailAddress,
		&user.CreatedAt,
	)

	return user, mapError(err)
}

func (db *PgStrideRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, email, password_hash, created_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	return user, mapError(err)
}

func (db *PgStrideRepository) UpsertProfile(params UpsertProfileParams) error {
	_, err := db.conn.Exec(
		"INSERT INTO profiles (account_id, name, weight, height, sex, age, country) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7) "+
			"ON CONFLICT (account_id) DO UPDATE SET "+
			"name = EXCLUDED.name, weight = EXCLUDED.weight, height = EXCLUDED.height, "+
			"sex = EXCLUDED.sex, age = EXCLUDED.age, country = EXCLUDED.country",
		params.UserId,
		params.Name,
		params.Weight,
		params.Height,
		params.Sex,
		params.Age,
		params.Country,
	)

	return mapError(err)
}

func (db *PgStrideRepository) GetProfile(userId int) (Profile, error) {
	row := db.conn.QueryRow(
		"SELECT account_id, name, weight, height, sex, age, country FROM profiles "+
			"WHERE account_id = $1 LIMIT 1",
		userId,
	)

	var p Profile
	err := row.Scan(
		&p.UserId,
		&p.Name,
		&p.Weight,
		&p.Height,
		&p.Sex,
		&p.Age,
		&p.Country,
	)

	return p, mapError(err)
}

func (db *PgStrideRepository) DisplayName(userId int) (string, error) {
	row := db.conn.QueryRow(
		"SELECT "+displayNameExpr+" FROM accounts a "+
			"LEFT JOIN profiles p ON p.account_id = a.id "+
			"WHERE a.id = $1 LIMIT 1",
		userId,
	)

	var name string
	err := row.Scan(&name)

	return name, mapError(err)
}

func (db *PgStrideRepository) AddDailyStat(params DailyStatParams) error {
	// One row per (account, date); a second report for the same day adds to
	// the existing totals.
	_, err := db.conn.Exec(
		"INSERT INTO daily_stats (account_id, calories, steps, distance, date) "+
			"VALUES ($1, $2, $3, $4, $5) "+
			"ON CONFLICT (account_id, date) DO UPDATE SET "+
			"calories = daily_stats.calories + EXCLUDED.calories, "+
			"steps = daily_stats.steps + EXCLUDED.steps, "+
			"distance = daily_stats.distance + EXCLUDED.distance",
		params.UserId,
		params.Calories,
		params.Steps,
		params.Distance,
		params.Date,
	)

	return mapError(err)
}

func (db *PgStrideRepository) ListDailyStats(userId int) ([]DailyStat, error) {
	rows, err := db.conn.Query(
		"SELECT id, account_id, calories, steps, distance, date FROM daily_stats "+
			"WHERE account_id = $1 ORDER BY date DESC",
		userId,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Id, &s.UserId, &s.Calories, &s.Steps, &s.Distance, &s.Date); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (db *PgStrideRepository) GetDailyStatsByDate(userId int, date time.Time) ([]DailyStat, error) {
	rows, err := db.conn.Query(
		"SELECT id, account_id, calories, steps, distance, date FROM daily_stats "+
			"WHERE account_id = $1 AND date = $2",
		userId,
		date,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var s DailyStat
		if err := rows.Scan(&s.Id, &s.UserId, &s.Calories, &s.Steps, &s.Distance, &s.Date); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (db *PgStrideRepository) CreateChatWithMembers(title string, creatorId int, memberIds []int) (Chat, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO chats (title, created_at) VALUES ($1, $2) "+
			"RETURNING id, title, created_at",
		title,
		time.Now().UTC(),
	)

	var chat Chat
	err = res.Scan(&chat.Id, &chat.Title, &chat.CreatedAt)
	if err != nil {
		return Chat{}, mapError(err)
	}

	// The creator is always a member; requested ids that don't resolve to an
	// account are skipped rather than failing the whole chat.
	ids := map[int]struct{}{creatorId: {}}
	for _, id := range memberIds {
		ids[id] = struct{}{}
	}

	for id := range ids {
		_, err = tx.Exec(
			"INSERT INTO chat_members (account_id, chat_id, joined_at) "+
				"SELECT id, $2, $3 FROM accounts WHERE id = $1 "+
				"ON CONFLICT (account_id, chat_id) DO NOTHING",
			id,
			chat.Id,
			time.Now().UTC(),
		)
		if err != nil {
			return Chat{}, mapError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Chat{}, mapError(err)
	}

	return chat, nil
}

func (db *PgStrideRepository) GetChat(chatId int) (Chat, error) {
	row := db.conn.QueryRow(
		"SELECT id, title, created_at FROM chats WHERE id = $1 LIMIT 1",
		chatId,
	)

	var chat Chat
	err := row.Scan(&chat.Id, &chat.Title, &chat.CreatedAt)

	return chat, mapError(err)
}

func (db *PgStrideRepository) IsMember(userId, chatId int) (bool, error) {
	row := db.conn.QueryRow(
		"SELECT EXISTS (SELECT 1 FROM chat_members WHERE account_id = $1 AND chat_id = $2)",
		userId,
		chatId,
	)

	var exists bool
	err := row.Scan(&exists)

	return exists, mapError(err)
}

// AddMember is idempotent: adding an existing member reports created=false
// without an error. Membership identity is the (account, chat) pair itself.
func (db *PgStrideRepository) AddMember(userId, chatId int) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT INTO chat_members (account_id, chat_id, joined_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (account_id, chat_id) DO NOTHING",
		userId,
		chatId,
		time.Now().UTC(),
	)
	if err != nil {
		return false, mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (db *PgStrideRepository) ListMembers(chatId int) ([]Member, error) {
	rows, err := db.conn.Query(
		"SELECT a.id, "+displayNameExpr+", m.joined_at "+
			"FROM chat_members m "+
			"JOIN accounts a ON a.id = m.account_id "+
			"LEFT JOIN profiles p ON p.account_id = a.id "+
			"WHERE m.chat_id = $1 ORDER BY m.joined_at, a.id",
		chatId,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserId, &m.Name, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func (db *PgStrideRepository) ListChatsForUser(userId int) ([]ChatPreview, error) {
	rows, err := db.conn.Query(
		"SELECT c.id, c.title, COALESCE("+
			"(SELECT content FROM messages WHERE chat_id = c.id "+
			"ORDER BY created_at DESC, id DESC LIMIT 1), '') "+
			"FROM chats c "+
			"JOIN chat_members m ON m.chat_id = c.id "+
			"WHERE m.account_id = $1 ORDER BY c.id",
		userId,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var chats []ChatPreview
	for rows.Next() {
		var c ChatPreview
		if err := rows.Scan(&c.Id, &c.Title, &c.LastMessage); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		chats = append(chats, c)
	}

	return chats, rows.Err()
}

func (db *PgStrideRepository) CreateMessage(chatId, senderId int, content string) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (chat_id, sender_id, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		chatId,
		senderId,
		content,
		time.Now().UTC(),
	)

	msg := Message{
		ChatId:   chatId,
		SenderId: senderId,
		Content:  content,
	}
	err := res.Scan(&msg.Id, &msg.CreatedAt)

	return msg, mapError(err)
}

func (db *PgStrideRepository) ListMessages(chatId int) ([]MessageWithSender, error) {
	rows, err := db.conn.Query(
		"SELECT m.id, m.chat_id, m.sender_id, m.content, m.created_at, "+displayNameExpr+" "+
			"FROM messages m "+
			"JOIN accounts a ON a.id = m.sender_id "+
			"LEFT JOIN profiles p ON p.account_id = a.id "+
			"WHERE m.chat_id = $1 ORDER BY m.created_at ASC, m.id ASC",
		chatId,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var messages []MessageWithSender
	for rows.Next() {
		var m MessageWithSender
		if err := rows.Scan(&m.Id, &m.ChatId, &m.SenderId, &m.Content, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (db *PgStrideRepository) CreateFriendRequest(requesterId, addresseeId int) (Friendship, error) {
	res := db.conn.QueryRow(
		"INSERT INTO friendships (requester_id, addressee_id, accepted, created_at) "+
			"VALUES ($1, $2, false, $3) RETURNING id, created_at",
		requesterId,
		addresseeId,
		time.Now().UTC(),
	)

	f := Friendship{UserId: addresseeId}
	err := res.Scan(&f.Id, &f.CreatedAt)

	return f, mapError(err)
}

func (db *PgStrideRepository) AcceptFriendRequest(friendshipId, addresseeId int) error {
	res, err := db.conn.Exec(
		"UPDATE friendships SET accepted = true "+
			"WHERE id = $1 AND addressee_id = $2 AND NOT accepted",
		friendshipId,
		addresseeId,
	)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (db *PgStrideRepository) ListFriends(userId int) ([]Friendship, error) {
	// Each row is the friendship as seen from userId's side, so the
	// reported user is always the other party.
	rows, err := db.conn.Query(
		"SELECT f.id, a.id, "+displayNameExpr+", f.accepted, f.created_at "+
			"FROM friendships f "+
			"JOIN accounts a ON a.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END "+
			"LEFT JOIN profiles p ON p.account_id = a.id "+
			"WHERE f.requester_id = $1 OR f.addressee_id = $1 "+
			"ORDER BY f.created_at, f.id",
		userId,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var friends []Friendship
	for rows.Next() {
		var f Friendship
		if err := rows.Scan(&f.Id, &f.UserId, &f.Name, &f.Accepted, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		friends = append(friends, f)
	}

	return friends, rows.Err()
}
