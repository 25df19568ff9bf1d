package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/config"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
)

// Claims carried by every access token.
const (
	ClaimUserID      = "user_id"
	ClaimName        = "name"
	ClaimRole        = "role"
	ClaimDirectorate = "directorate"
)

const refreshTokenTTL = 8760 * time.Hour

type credentialsVerifier struct {
	users *store.UserStore
	now   func() time.Time
}

// CredentialsVerifier authenticates users by e-mail and password and keeps
// refresh token ids in the user store. Client credentials are not supported.
func CredentialsVerifier(users *store.UserStore) oauth.CredentialsVerifier {
	return &credentialsVerifier{users: users, now: time.Now}
}

func NewBearerServer(users *store.UserStore, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(users), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	_, err := cs.users.Authenticate(r.Context(), username, password)
	return err
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.users.StoreToken(
		context.Background(),
		credential,
		tokenID,
		refreshTokenID,
		cs.now().Add(refreshTokenTTL),
	)
}

func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	err := cs.users.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID, cs.now())
	if err != nil {
		return errors.Wrap(err, "could not refresh")
	}

	// a deactivated user keeps no session
	user, err := cs.users.GetByEmail(context.Background(), credential)
	if err != nil {
		return errors.Wrap(err, "could not refresh")
	}
	if user.Status == model.UserInactive {
		return store.ErrInactive
	}
	return nil
}

func (cs *credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	user, err := cs.users.GetByEmail(r.Context(), credential)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		ClaimUserID:      user.ID,
		ClaimName:        user.Name,
		ClaimRole:        string(user.Role),
		ClaimDirectorate: string(user.Directorate),
	}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
