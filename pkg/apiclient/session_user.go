package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

// MinWithdrawAmount is the smallest withdrawal the backend accepts.
const MinWithdrawAmount = 500

// Profile fetches the player's account and updates the cached profile.
func (s *UserSession) Profile(ctx context.Context) (*UserInfo, error) {
	var raw json.RawMessage
	if err := s.client.getJSON(ctx, s.role(), "profile/", nil, &raw); err != nil {
		return nil, err
	}

	var info UserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	if err := s.client.store.Set(ctx, s.role(), credstore.KeyProfile, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to cache profile: %w", err)
	}

	return &info, nil
}

// Balance returns the player's wallet balances.
func (s *UserSession) Balance(ctx context.Context) (*Balance, error) {
	var b Balance
	if err := s.client.getJSON(ctx, s.role(), "balance/", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

type withdrawRequest struct {
	Amount json.Number `json:"amount"`
}

// Withdraw requests a payout of amount. Amounts below MinWithdrawAmount are
// rejected without contacting the backend.
func (s *UserSession) Withdraw(ctx context.Context, amount json.Number) (*MessageResponse, error) {
	v, err := amount.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidInput, amount)
	}
	if v < MinWithdrawAmount {
		return nil, fmt.Errorf("%w: minimum withdrawal is %d", ErrInvalidInput, MinWithdrawAmount)
	}

	var resp MessageResponse
	if err := s.client.postJSON(ctx, s.role(), "withdraw/", withdrawRequest{Amount: amount}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type depositRequest struct {
	Amount    json.Number `json:"amount"`
	UTRNumber string      `json:"utr_number"`
}

// Deposit files a deposit request referencing a bank transfer by UTR.
func (s *UserSession) Deposit(ctx context.Context, amount json.Number, utr string) (*MessageResponse, error) {
	if err := positiveAmount(amount); err != nil {
		return nil, err
	}
	utr = strings.TrimSpace(utr)
	if utr == "" {
		return nil, fmt.Errorf("%w: UTR number is required", ErrInvalidInput)
	}

	var resp MessageResponse
	body := depositRequest{Amount: amount, UTRNumber: utr}
	if err := s.client.postJSON(ctx, s.role(), "deposit-requests/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transactions lists the player's wallet transactions.
func (s *UserSession) Transactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := s.client.getJSON(ctx, s.role(), "transactions/", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// PlaceBet stakes bet.Amount on bet.Number. Game, number and a positive
// amount are required.
func (s *UserSession) PlaceBet(ctx context.Context, bet PlaceBetRequest) (*PlaceBetResponse, error) {
	if strings.TrimSpace(bet.GameName) == "" || strings.TrimSpace(bet.Number) == "" {
		return nil, fmt.Errorf("%w: game and number are required", ErrInvalidInput)
	}
	if err := positiveAmount(bet.Amount); err != nil {
		return nil, err
	}

	var resp PlaceBetResponse
	if err := s.client.postJSON(ctx, s.role(), "place-bet/", bet, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bets24h lists the player's bets from the last day.
func (s *UserSession) Bets24h(ctx context.Context) ([]Bet, error) {
	return s.bets(ctx, "view-bets-24h/")
}

// Bets30d lists the player's bets from the last thirty days.
func (s *UserSession) Bets30d(ctx context.Context) ([]Bet, error) {
	return s.bets(ctx, "view-bets-30d/")
}

// MyBets lists every bet the player has placed.
func (s *UserSession) MyBets(ctx context.Context) ([]Bet, error) {
	return s.bets(ctx, "my-bets/")
}

func (s *UserSession) bets(ctx context.Context, path string) ([]Bet, error) {
	var bets []Bet
	if err := s.client.getJSON(ctx, s.role(), path, nil, &bets); err != nil {
		return nil, err
	}
	return bets, nil
}

// Referrals returns the player's referral code and summary.
func (s *UserSession) Referrals(ctx context.Context) ([]Referral, error) {
	return s.referrals(ctx, "user/referrals/")
}

// MyReferrals lists the accounts the player referred.
func (s *UserSession) MyReferrals(ctx context.Context) ([]Referral, error) {
	return s.referrals(ctx, "user/my-referrals/")
}

func (s *UserSession) referrals(ctx context.Context, path string) ([]Referral, error) {
	var refs []Referral
	if err := s.client.getJSON(ctx, s.role(), path, nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func positiveAmount(amount json.Number) error {
	v, err := amount.Float64()
	if err != nil {
		return fmt.Errorf("%w: amount %q", ErrInvalidInput, amount)
	}
	if v <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return nil
}
