package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

var (
	ErrInvalidInitData = errors.New("invalid telegram init data")
	ErrStaleInitData   = errors.New("telegram init data is too old")
)

// maxInitDataAge bounds replay of a captured init data payload.
const maxInitDataAge = 24 * time.Hour

// AuthService verifies Telegram Mini App init data and exchanges it for
// a session token, creating the account on first contact.
type AuthService struct {
	botToken string
	users    domain.UserRepository
	tokens   *TokenService
}

func NewAuthService(botToken string, users domain.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{botToken: botToken, users: users, tokens: tokens}
}

type AuthResult struct {
	Token string             `json:"token"`
	User  domain.UserProfile `json:"user"`
}

type telegramUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`
	IsPremium bool   `json:"is_premium"`
}

// verifyInitData checks the HMAC signature Telegram attaches to Mini
// App init data. The data-check string is every key except hash, sorted,
// joined as key=value lines; the signing key is HMAC_SHA256 of the bot
// token keyed with the literal "WebAppData".
func (s *AuthService) verifyInitData(initData string) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}

	var pairs []string
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	dataCheckString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(s.botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrInvalidInitData
	}

	if authDate := values.Get("auth_date"); authDate != "" {
		ts, err := strconv.ParseInt(authDate, 10, 64)
		if err != nil {
			return nil, ErrInvalidInitData
		}
		if time.Since(time.Unix(ts, 0)) > maxInitDataAge {
			return nil, ErrStaleInitData
		}
	}

	return values, nil
}

// Authenticate validates init data, upserts the Telegram account, and
// issues a session token.
func (s *AuthService) Authenticate(ctx context.Context, initData string) (*AuthResult, error) {
	values, err := s.verifyInitData(initData)
	if err != nil {
		return nil, err
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrInvalidInitData
	}
	var tu telegramUser
	if err := json.Unmarshal([]byte(rawUser), &tu); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	user, err := s.users.GetByTelegramID(ctx, tu.ID)
	switch {
	case err == nil:
		// Keep the profile fresh: Telegram display data changes outside
		// our control.
		changed := user.Username != tu.Username ||
			user.FirstName != tu.FirstName ||
			user.LastName != tu.LastName ||
			user.PhotoURL != tu.PhotoURL ||
			user.IsPremium != tu.IsPremium
		if changed {
			user.Username = tu.Username
			user.FirstName = tu.FirstName
			user.LastName = tu.LastName
			user.PhotoURL = tu.PhotoURL
			user.IsPremium = tu.IsPremium
			user.UpdatedAt = time.Now().UTC()
			if err := s.users.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = domain.NewUser(tu.ID, tu.Username, tu.FirstName, tu.LastName, tu.PhotoURL)
		if err != nil {
			return nil, err
		}
		user.IsPremium = tu.IsPremium
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user.Profile()}, nil
}
