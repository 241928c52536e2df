package apiclient

import (
	"context"
	"fmt"
	"strings"
)

// UsersStats lists every account with its wallet and referral totals.
func (s *AdminSession) UsersStats(ctx context.Context) ([]UserStats, error) {
	var users []UserStats
	if err := s.client.getJSON(ctx, s.role(), "admin/users-stats/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type userIDRequest struct {
	UserID int64 `json:"user_id"`
}

// ToggleUserStatus flips an account between active and blocked.
func (s *AdminSession) ToggleUserStatus(ctx context.Context, userID int64) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.postJSON(ctx, s.role(), "admin/toggle-user-status/", userIDRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteUser removes an account.
func (s *AdminSession) DeleteUser(ctx context.Context, userID int64) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.postJSON(ctx, s.role(), "admin/delete-user/", userIDRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ============================================================================
// Deposits and withdrawals
// ============================================================================

// DepositRequests lists deposit requests awaiting review.
func (s *AdminSession) DepositRequests(ctx context.Context) ([]DepositRequest, error) {
	var deposits []DepositRequest
	if err := s.client.getJSON(ctx, s.role(), "admin/deposit-requests/", nil, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

type depositActionRequest struct {
	DepositID int64  `json:"deposit_id"`
	Action    string `json:"action"`
}

// ApproveDeposit credits a pending deposit to the user's wallet.
func (s *AdminSession) ApproveDeposit(ctx context.Context, depositID int64) (*MessageResponse, error) {
	return s.depositAction(ctx, depositID, actionApprove)
}

// RejectDeposit declines a pending deposit.
func (s *AdminSession) RejectDeposit(ctx context.Context, depositID int64) (*MessageResponse, error) {
	return s.depositAction(ctx, depositID, actionReject)
}

func (s *AdminSession) depositAction(ctx context.Context, depositID int64, action string) (*MessageResponse, error) {
	var resp MessageResponse
	body := depositActionRequest{DepositID: depositID, Action: action}
	if err := s.client.postJSON(ctx, s.role(), "admin/deposit-action/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WithdrawRequests lists withdrawal requests awaiting review.
func (s *AdminSession) WithdrawRequests(ctx context.Context) ([]WithdrawRequest, error) {
	var withdrawals []WithdrawRequest
	if err := s.client.getJSON(ctx, s.role(), "admin/withdraw-requests/", nil, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

type withdrawActionRequest struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
}

// ApproveWithdraw marks a pending withdrawal as paid out.
func (s *AdminSession) ApproveWithdraw(ctx context.Context, withdrawID int64) (*MessageResponse, error) {
	return s.withdrawAction(ctx, withdrawID, actionApprove)
}

// RejectWithdraw declines a pending withdrawal.
func (s *AdminSession) RejectWithdraw(ctx context.Context, withdrawID int64) (*MessageResponse, error) {
	return s.withdrawAction(ctx, withdrawID, actionReject)
}

func (s *AdminSession) withdrawAction(ctx context.Context, withdrawID int64, action string) (*MessageResponse, error) {
	var resp MessageResponse
	body := withdrawActionRequest{ID: withdrawID, Action: action}
	if err := s.client.postJSON(ctx, s.role(), "admin/withdraw-action/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ============================================================================
// Reports
// ============================================================================

// Transactions lists wallet transactions across all users.
func (s *AdminSession) Transactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := s.client.getJSON(ctx, s.role(), "admin/transactions/", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// Bets returns the stake totals per game and number.
func (s *AdminSession) Bets(ctx context.Context) (BetBook, error) {
	var book BetBook
	if err := s.client.getJSON(ctx, s.role(), "admin/bets/", nil, &book); err != nil {
		return nil, err
	}
	return book, nil
}

// ReferralSummary lists referrers with their referral counts and earnings.
func (s *AdminSession) ReferralSummary(ctx context.Context) ([]Referral, error) {
	var summary []Referral
	if err := s.client.getJSON(ctx, s.role(), "admin/referral-summary/", nil, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// ============================================================================
// Results
// ============================================================================

// declareResultRequest carries the game under both names: the dashboard
// posts game, the declare-result view reads game_name.
type declareResultRequest struct {
	Game          string `json:"game"`
	GameName      string `json:"game_name"`
	WinningNumber string `json:"winning_number"`
}

// DeclareResult publishes the winning number for game. The game name is
// checked against Games before anything is sent.
func (s *AdminSession) DeclareResult(ctx context.Context, game, winningNumber string) (*MessageResponse, error) {
	if !KnownGame(game) {
		return nil, fmt.Errorf("%w: unknown game %q", ErrInvalidInput, game)
	}
	winningNumber = strings.TrimSpace(winningNumber)
	if winningNumber == "" {
		return nil, fmt.Errorf("%w: winning number is required", ErrInvalidInput)
	}

	var resp MessageResponse
	game = normalizeGame(game)
	body := declareResultRequest{Game: game, GameName: game, WinningNumber: winningNumber}
	if err := s.client.postJSON(ctx, s.role(), "admin/declare-result/", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
