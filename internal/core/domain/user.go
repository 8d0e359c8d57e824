package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidTelegramUser = errors.New("invalid telegram user data")
)

type User struct {
	ID         string `db:"id"`
	TelegramID int64  `db:"telegram_id"`
	Username   string `db:"username"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	PhotoURL   string `db:"photo_url"`
	IsPremium  bool   `db:"is_premium"`

	XP      int    `db:"xp"`
	Level   int    `db:"level"`
	Title   string `db:"title"`
	Shields int    `db:"streak_shields"`

	// XPToday tracks XP earned on XPTodayDate so the daily cap can be
	// enforced across requests.
	XPToday     int    `db:"xp_today"`
	XPTodayDate string `db:"xp_today_date"`

	// BalanceWheelPublicOnly restricts the profile balance wheel to
	// public habits.
	BalanceWheelPublicOnly bool `db:"balance_wheel_public_only"`

	// StatsDays is the title-privilege ceiling on how far back range
	// stats may reach.
	StatsDays int `db:"stats_days"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewUser(telegramID int64, username, firstName, lastName, photoURL string) (*User, error) {
	if telegramID <= 0 {
		return nil, ErrInvalidTelegramUser
	}

	now := time.Now().UTC()
	return &User{
		ID:         uuid.New().String(),
		TelegramID: telegramID,
		Username:   strings.TrimSpace(username),
		FirstName:  strings.TrimSpace(firstName),
		LastName:   strings.TrimSpace(lastName),
		PhotoURL:   photoURL,
		Level:      1,
		Title:      titleLadder[0].Name,
		StatsDays:  DefaultStatsDays,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DisplayName prefers the first name, then the username.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// StatsWindow is the stats range ceiling in days, never below one.
func (u *User) StatsWindow() int {
	if u.StatsDays < 1 {
		return DefaultStatsDays
	}
	return u.StatsDays
}

const XPBase = 10

// StreakMultiplier scales XP by how long the user has kept the chain
// going: 3, 7 and 20 days are the breakpoints.
func StreakMultiplier(streakDays int) float64 {
	switch {
	case streakDays >= 20:
		return 2.0
	case streakDays >= 7:
		return 1.5
	case streakDays >= 3:
		return 1.3
	default:
		return 1.0
	}
}

// DailyXPCap grows with the number of habits so small routines cannot
// farm the same ceiling as large ones.
func DailyXPCap(habitCount int) int {
	switch {
	case habitCount <= 2:
		return 50
	case habitCount <= 4:
		return 75
	default:
		return 100
	}
}

// XPForLevel is the XP needed to clear a single level.
func XPForLevel(level int) int {
	return int(8.5 * math.Pow(1.05, float64(level-1)))
}

// LevelFromXP converts cumulative XP into a level along the curve.
func LevelFromXP(totalXP int) int {
	level := 1
	required := 0
	for {
		step := XPForLevel(level)
		if totalXP < required+step {
			return level
		}
		required += step
		level++
	}
}

// AwardXP grants raw XP clamped to the remaining daily allowance for
// the given date, recomputes the level, and returns what was actually
// awarded.
func (u *User) AwardXP(raw int, isoDate string, habitCount int) int {
	if raw <= 0 {
		return 0
	}

	if u.XPTodayDate != isoDate {
		u.XPTodayDate = isoDate
		u.XPToday = 0
	}

	remaining := DailyXPCap(habitCount) - u.XPToday
	if remaining <= 0 {
		return 0
	}
	awarded := raw
	if awarded > remaining {
		awarded = remaining
	}

	u.XP += awarded
	u.XPToday += awarded
	u.Level = LevelFromXP(u.XP)
	u.Title = TitleForLevel(u.Level, u.IsPremium).Name
	u.UpdatedAt = time.Now().UTC()
	return awarded
}

// UserProfile is the snake_case wire shape of the account owner.
type UserProfile struct {
	ID           string `json:"id"`
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhotoURL     string `json:"photo_url"`
	Level        int    `json:"level"`
	XP           int    `json:"xp"`
	Title        string `json:"title"`
	IsPremium    bool   `json:"is_premium"`
	BalanceWheel bool   `json:"balance_wheel"`
	StatsDays    int    `json:"stats_days"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:           u.ID,
		TelegramID:   u.TelegramID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PhotoURL:     u.PhotoURL,
		Level:        u.Level,
		XP:           u.XP,
		Title:        u.Title,
		IsPremium:    u.IsPremium,
		BalanceWheel: u.BalanceWheelPublicOnly,
		StatsDays:    u.StatsWindow(),
	}
}

// AsLeaderboardEntry renders the user as a leaderboard row.
func (u *User) AsLeaderboardEntry(rank int) LeaderboardEntry {
	return LeaderboardEntry{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Avatar:    u.PhotoURL,
		Level:     u.Level,
		XP:        u.XP,
		Rank:      rank,
		IsPremium: u.IsPremium,
	}
}
