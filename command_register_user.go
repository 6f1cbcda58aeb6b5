package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name      string `json:"name"`
	Username  string `json:"user_name"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates a new account. The password encoding, the
// user row and the initial refresh token are committed together, a
// failure at any step leaves no partial account behind.
type RegisterUserHandler struct {
	repo   RepositoryManager
	codec  PasswordCodec
	tokens TokenIssuer
}

func NewRegisterUserHandler(repo RepositoryManager, codec PasswordCodec, tokens TokenIssuer) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		codec:  codec,
		tokens: tokens,
	}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByUsernameTx(ctx, tx, event.Username); err == nil {
			return ErrUserExists
		} else if !goerrors.IsNotFound(err) {
			return err
		}

		encoded, err := h.codec.Encode(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode password")
		}

		role := DefaultRole
		if event.Role != "" {
			if role, err = ParseRole(event.Role); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid role provided")
			}
		}

		user.Password = encoded
		user.Name = event.Name
		user.Username = event.Username
		user.Mobile = event.Mobile
		user.Role = role
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Username); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return err
		}

		refresh, err := h.tokens.IssueRefreshToken(NewIdentityFromUser(user))
		if err != nil {
			return err
		}

		if err := h.repo.Users().SetRefreshTokenTx(ctx, tx, user.ID, refresh); err != nil {
			return err
		}
		user.RefreshToken = refresh

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	return user, nil
}
