package view

import (
	"context"

	"storefront/internal/fetch"
	"storefront/internal/models"
	"storefront/internal/session"
)

// AccountView backs the account page: the profile fetch follows the
// same three-state contract as the catalog pages. An unauthorized
// response lands here as the error state after the session has already
// cleared the token and fired the login navigation.
type AccountView struct {
	session *session.Session
	fetcher *fetch.Fetcher[*models.User]
}

// NewAccountView creates the view
func NewAccountView(s *session.Session) *AccountView {
	return &AccountView{
		session: s,
		fetcher: fetch.NewFetcher[*models.User](),
	}
}

// Load starts fetching the current user's profile.
func (v *AccountView) Load() {
	v.fetcher.Load(context.Background(), "me", func(ctx context.Context) (*models.User, error) {
		return v.session.CurrentUser(ctx)
	})
}

// Snapshot returns the current three-state result.
func (v *AccountView) Snapshot() fetch.Result[*models.User] {
	return v.fetcher.Snapshot()
}

// Close unmounts the view.
func (v *AccountView) Close() {
	v.fetcher.Close()
}
