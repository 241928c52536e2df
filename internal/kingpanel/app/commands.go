package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/kingpanel/pkg/apiclient"
	"github.com/aussiebroadwan/kingpanel/pkg/credstore"
)

// ErrUsage is returned for unknown commands and wrong argument counts.
var ErrUsage = errors.New("usage")

type command struct {
	args  string // argument synopsis for usage output
	nargs int
	run   func(ctx context.Context, app *Application, args []string) (any, error)
}

var commands = map[string]command{
	// Sessions
	"admin-login": {"USERNAME PASSWORD", 2, func(ctx context.Context, app *Application, args []string) (any, error) {
		resp, err := app.client.AdminLogin(ctx, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return map[string]string{"username": resp.Username, "role": credstore.RoleAdmin.String()}, nil
	}},
	"login": {"MOBILE PASSWORD", 2, func(ctx context.Context, app *Application, args []string) (any, error) {
		resp, err := app.client.Login(ctx, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return resp.User, nil
	}},
	"logout": {"admin|user", 1, func(ctx context.Context, app *Application, args []string) (any, error) {
		role, err := credstore.ParseRole(args[0])
		if err != nil {
			return nil, err
		}
		if err := app.client.Logout(ctx, role); err != nil {
			return nil, err
		}
		return map[string]string{"logged_out": role.String()}, nil
	}},
	"status": {"admin|user", 1, func(ctx context.Context, app *Application, args []string) (any, error) {
		role, err := credstore.ParseRole(args[0])
		if err != nil {
			return nil, err
		}
		return app.client.Status(ctx, role, time.Now())
	}},
	"refresh": {"admin|user", 1, func(ctx context.Context, app *Application, args []string) (any, error) {
		role, err := credstore.ParseRole(args[0])
		if err != nil {
			return nil, err
		}
		if err := app.client.Refresh(ctx, role); err != nil {
			return nil, err
		}
		return app.client.Status(ctx, role, time.Now())
	}},
	"game-status": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.GameStatus(ctx)
	}},

	// Admin
	"users": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().UsersStats(ctx)
	}},
	"toggle-user": {"USER_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.ToggleUserStatus(ctx, id)
	})},
	"delete-user": {"USER_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.DeleteUser(ctx, id)
	})},
	"deposits": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().DepositRequests(ctx)
	}},
	"deposit-approve": {"DEPOSIT_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.ApproveDeposit(ctx, id)
	})},
	"deposit-reject": {"DEPOSIT_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.RejectDeposit(ctx, id)
	})},
	"withdrawals": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().WithdrawRequests(ctx)
	}},
	"withdraw-approve": {"WITHDRAW_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.ApproveWithdraw(ctx, id)
	})},
	"withdraw-reject": {"WITHDRAW_ID", 1, withID(func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error) {
		return a.RejectWithdraw(ctx, id)
	})},
	"transactions": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().Transactions(ctx)
	}},
	"bets": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().Bets(ctx)
	}},
	"referral-summary": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.Admin().ReferralSummary(ctx)
	}},
	"declare-result": {"GAME NUMBER", 2, func(ctx context.Context, app *Application, args []string) (any, error) {
		return app.client.Admin().DeclareResult(ctx, args[0], args[1])
	}},

	// Player
	"profile": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Profile(ctx)
	}},
	"balance": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Balance(ctx)
	}},
	"deposit": {"AMOUNT UTR", 2, func(ctx context.Context, app *Application, args []string) (any, error) {
		return app.client.User().Deposit(ctx, json.Number(args[0]), args[1])
	}},
	"withdraw": {"AMOUNT", 1, func(ctx context.Context, app *Application, args []string) (any, error) {
		return app.client.User().Withdraw(ctx, json.Number(args[0]))
	}},
	"my-transactions": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Transactions(ctx)
	}},
	"place-bet": {"GAME NUMBER AMOUNT", 3, func(ctx context.Context, app *Application, args []string) (any, error) {
		return app.client.User().PlaceBet(ctx, apiclient.PlaceBetRequest{
			GameName: args[0],
			Number:   args[1],
			Amount:   json.Number(args[2]),
		})
	}},
	"my-bets": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().MyBets(ctx)
	}},
	"bets-24h": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Bets24h(ctx)
	}},
	"bets-30d": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Bets30d(ctx)
	}},
	"referrals": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().Referrals(ctx)
	}},
	"my-referrals": {"", 0, func(ctx context.Context, app *Application, _ []string) (any, error) {
		return app.client.User().MyReferrals(ctx)
	}},
}

func withID(fn func(ctx context.Context, a *apiclient.AdminSession, id int64) (any, error)) func(context.Context, *Application, []string) (any, error) {
	return func(ctx context.Context, app *Application, args []string) (any, error) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid id %q", ErrUsage, args[0])
		}
		return fn(ctx, app.client.Admin(), id)
	}
}

// Run executes the command named by args[0] and writes its result to stdout
// as indented JSON.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}
	if len(rest) != cmd.nargs {
		return fmt.Errorf("%w: kingpanel %s %s", ErrUsage, name, cmd.args)
	}

	app.logger.Debug("running command", "command", name)

	out, err := cmd.run(ctx, app, rest)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Usage writes the command list to w.
func Usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("usage: kingpanel [--config FILE] COMMAND [ARGS]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-18s %s\n", name, commands[name].args)
	}
	_, _ = io.WriteString(w, b.String())
}
