package apiclient

import (
	"encoding/json"
	"slices"
	"strings"
)

// ============================================================================
// Authentication
// ============================================================================

// UserInfo is the account summary returned on login and by the profile
// endpoint.
type UserInfo struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email,omitempty"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// LoginResponse is the reply of the player login endpoint.
type LoginResponse struct {
	Message      string   `json:"message"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         UserInfo `json:"user"`
}

// AdminTokenResponse is the reply of the admin token endpoint.
type AdminTokenResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
}

// AdminProfile is what gets cached for the admin role after login.
type AdminProfile struct {
	Username string `json:"username"`
}

type RegisterRequest struct {
	Username     string `json:"username"`
	Mobile       string `json:"mobile"`
	Email        string `json:"email,omitempty"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// MessageResponse is the generic acknowledgement most write endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Games
// ============================================================================

// Games lists the markets results can be declared for.
var Games = []string{
	"gali",
	"faridabad",
	"disawer",
	"ghaziabad",
	"jaipur king",
	"diamond king",
}

// KnownGame reports whether name is one of Games, ignoring case and
// surrounding space.
func KnownGame(name string) bool {
	return slices.Contains(Games, normalizeGame(name))
}

func normalizeGame(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GameStatus is keyed by game name; the value says whether bets are open.
type GameStatus map[string]json.RawMessage

// ============================================================================
// Wallet and transactions
// ============================================================================

type Balance struct {
	Balance  json.Number `json:"balance"`
	Bonus    json.Number `json:"bonus"`
	Winnings json.Number `json:"winnings"`
}

type Transaction struct {
	ID              int64       `json:"id"`
	User            string      `json:"user,omitempty"`
	TransactionType string      `json:"transaction_type"`
	Amount          json.Number `json:"amount"`
	Status          string      `json:"status"`
	CreatedAt       string      `json:"created_at"`
	Note            string      `json:"note,omitempty"`
}

type AccountRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Mobile   string `json:"mobile"`
}

type DepositRequest struct {
	ID        int64       `json:"id"`
	UserInfo  AccountRef  `json:"user_info"`
	Amount    json.Number `json:"amount"`
	UTRNumber string      `json:"utr_number"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
}

type WithdrawRequest struct {
	ID         int64       `json:"id"`
	User       AccountRef  `json:"user"`
	Amount     json.Number `json:"amount"`
	IsApproved bool        `json:"is_approved"`
	IsRejected bool        `json:"is_rejected"`
	Status     string      `json:"status"`
	CreatedAt  string      `json:"created_at"`
}

// ============================================================================
// Bets
// ============================================================================

type Bet struct {
	ID        int64       `json:"id"`
	User      string      `json:"user,omitempty"`
	Game      string      `json:"game"`
	BetType   string      `json:"bet_type"`
	Number    string      `json:"number"`
	Amount    json.Number `json:"amount"`
	IsWin     bool        `json:"is_win"`
	Payout    json.Number `json:"payout,omitempty"`
	CreatedAt string      `json:"created_at"`
}

type PlaceBetRequest struct {
	GameName string      `json:"game_name"`
	Number   string      `json:"number"`
	Amount   json.Number `json:"amount"`
}

type PlaceBetResponse struct {
	Message          string      `json:"message"`
	BetID            int64       `json:"bet_id"`
	RemainingBalance json.Number `json:"remaining_balance"`
}

// NumberBets totals the stakes placed on one number.
type NumberBets struct {
	Amount      json.Number `json:"amount"`
	AndarAmount json.Number `json:"andarAmount"`
	BaharAmount json.Number `json:"baharAmount"`
}

type GameBets struct {
	NumberWiseBets map[string]NumberBets `json:"numberWiseBets"`
}

// BetBook is the admin bet overview keyed by game.
type BetBook map[string]GameBets

// ============================================================================
// Users and referrals
// ============================================================================

const (
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

type UserStats struct {
	ID               int64       `json:"id"`
	Username         string      `json:"username"`
	Mobile           string      `json:"mobile"`
	Email            string      `json:"email"`
	Status           string      `json:"status"`
	Balance          json.Number `json:"balance"`
	TotalDeposit     json.Number `json:"total_deposit"`
	TotalWithdraw    json.Number `json:"total_withdraw"`
	TotalEarning     json.Number `json:"total_earning"`
	TodayDeposit     json.Number `json:"today_deposit"`
	TodayWithdraw    json.Number `json:"today_withdraw"`
	TotalReferrals   int         `json:"total_referrals"`
	ReferralEarnings json.Number `json:"referral_earnings"`
	ReferralCode     string      `json:"referral_code"`
	DateJoined       string      `json:"date_joined"`
}

// Referral is one referred account. The backend varies the exact fields
// between endpoints, so the remainder is kept raw.
type Referral map[string]json.RawMessage
