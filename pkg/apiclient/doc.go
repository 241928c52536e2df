/*
Package apiclient is the authenticated HTTP client for the King Panel betting
backend.

# Overview

Every call to the backend goes through a Client. The client attaches the
bearer token stored for the request's role, and when the backend answers 401
it refreshes that token and replays the request, so callers never see an
expired access token.

	client := apiclient.New("http://127.0.0.1:8000/api", apiclient.Options{
		Store: store,
	})

	if _, err := client.AdminLogin(ctx, "admin", password); err != nil {
		return err
	}

	deposits, err := client.Admin().DepositRequests(ctx)

# Roles

Credentials are namespaced by role. The admin dashboard and the player
dashboard each hold their own access token, refresh token and cached
profile, and each role is refreshed independently. A failed admin refresh
never touches the player session and vice versa.

# Refresh and Replay

When a request comes back 401 and its role holds a refresh token, the client
posts the refresh token to /token/refresh/. Only one exchange runs per role
at a time: requests that hit 401 while it is in flight wait in a queue and
are released, in arrival order, with the new token once it lands. Each
request is replayed at most once; a second 401 is returned to the caller.

If the exchange fails the session is over. The role's credentials are
deleted, the Navigator is called once with the role's login path (/admin or
/login), and the triggering request and every queued request receive a
*RefreshError:

	if errors.Is(err, apiclient.ErrRefreshFailed) {
		// sign in again
	}

A 401 for a role without a refresh token is returned as-is.

# Errors

Send returns non-2xx responses unchanged, like net/http. The typed
operations on Client, AdminSession and UserSession decode them into
*APIError instead.
*/
package apiclient
