package accounts

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/nyaruka/phonenumbers"

	"github.com/goliatone/go-accounts/middleware/gate"
)

// RegisterAuthRoutes mounts the authentication endpoints on the app.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	grp := app.Group(controller.Routes.Prefix)

	grp.Post(controller.Routes.CreateAccount, controller.CreateAccount)
	grp.Post(controller.Routes.Login, controller.Login)
	grp.Post(controller.Routes.Logout, controller.Logout)

	grp.Get(controller.Routes.Check, gate.New(gate.Config{
		SessionCheck:    gate.Strict,
		TokenValidator:  NewGateValidator(controller.Tokens),
		SessionChecker:  controller.sessionChecker(),
		ContextKey:      controller.ContextKey,
		ContextEnricher: PropagateClaims,
	}), controller.CheckAuthenticated)
}

type AuthControllerRoutes struct {
	Prefix        string
	CreateAccount string
	Login         string
	Logout        string
	Check         string
}

type AuthController struct {
	Debug       bool
	Logger      Logger
	Repo        RepositoryManager
	Tokens      TokenIssuer
	Codec       PasswordCodec
	Routes      *AuthControllerRoutes
	ContextKey  string
	PhoneRegion string
	UseHashid   bool
}

func NewAuthController(repo RepositoryManager, tokens TokenIssuer, codec PasswordCodec) *AuthController {
	return &AuthController{
		Logger: defLogger{},
		Repo:   repo,
		Tokens: tokens,
		Codec:  codec,
		Routes: &AuthControllerRoutes{
			Prefix:        "/auth",
			CreateAccount: "/create-account",
			Login:         "/login",
			Logout:        "/logout",
			Check:         "/check-isAuthenticate",
		},
		ContextKey:  "user",
		PhoneRegion: "IN",
	}
}

// WithLogger sets the logger, fluent interface
func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// PropagateClaims copies the gate verified claims into the request's
// context.Context so they travel past the fiber layer.
func PropagateClaims(c *fiber.Ctx, claims gate.AuthClaims) {
	if ac, ok := claims.(AuthClaims); ok {
		c.SetUserContext(WithClaimsContext(c.UserContext(), ac))
	}
}

func (a *AuthController) sessionChecker() gate.SessionChecker {
	return gate.SessionCheckerFunc(func(c *fiber.Ctx, token string) error {
		sess, err := a.Repo.Sessions().FindByToken(c.UserContext(), token)
		if err != nil {
			return err
		}
		if sess.Expired(time.Now()) {
			return gate.ErrSessionNotFound
		}
		return nil
	})
}

// CreateAccountPayload is the registration payload
type CreateAccountPayload struct {
	Name     string `json:"name"`
	Username string `json:"user_name"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r CreateAccountPayload) Validate(phoneRegion string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Mobile, validation.By(ValidatePhoneNumber(phoneRegion))),
		validation.Field(&r.Role, validation.By(ValidateRoleName)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) CreateAccount(ctx *fiber.Ctx) error {
	payload := new(CreateAccountPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("create account parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse(map[string]any{}, "Failed to parse request body"))
	}

	if err := payload.Validate(a.PhoneRegion); err != nil {
		a.Logger.Error("create account validate payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse(map[string]any{}, err.Error()))
	}

	handler := NewRegisterUserHandler(a.Repo, a.Codec, a.Tokens)

	user, err := handler.Execute(ctx.UserContext(), RegisterUserMessage{
		Name:      payload.Name,
		Username:  payload.Username,
		Mobile:    payload.Mobile,
		Role:      payload.Role,
		Password:  payload.Password,
		UseHashid: a.UseHashid,
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(map[string]any{}, ErrUserExists.Message))
		}
		a.Logger.Error("create account execute: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(map[string]any{}, "Internal server error"))
	}

	return ctx.Status(fiber.StatusCreated).
		JSON(SuccessResponse(user.PublicProfile(), "User created successfully"))
}

// LoginPayload is the login payload
type LoginPayload struct {
	Username string `json:"user_name"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse(map[string]any{}, "Failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(ErrorResponse(map[string]any{}, err.Error()))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, err := a.Repo.Users().GetByUsername(ctx.UserContext(), payload.Username)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(ErrorResponse(map[string]any{}, ErrBadCredentials.Message))
	}

	if err := a.Codec.Verify(payload.Password, user.Password); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).
			JSON(ErrorResponse(map[string]any{}, ErrBadCredentials.Message))
	}

	// Replaces any session the user held, last writer wins.
	access, err := a.Tokens.IssueAccessToken(ctx.UserContext(), NewIdentityFromUser(user))
	if err != nil {
		a.Logger.Error("login issue access token: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(map[string]any{}, "Internal server error"))
	}

	// The refresh token is minted at registration and not rotated here.
	return ctx.JSON(SuccessResponse(map[string]any{
		"user":          user.PublicProfile(),
		"access_token":  access,
		"refresh_token": user.RefreshToken,
	}, "Logged in successfully"))
}

// Logout drops the session row backing the presented token. Repeating
// the call with the same token still succeeds.
func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	raw, err := gate.ExtractRawToken(ctx, gate.GetExtractors("header:"+fiber.HeaderAuthorization))
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"isAuthenticated": false,
			"message":         "Invalid Token",
		})
	}

	if _, err := a.Repo.Sessions().DeleteByToken(ctx.UserContext(), raw); err != nil {
		a.Logger.Error("logout delete session: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(map[string]any{}, "Internal server error"))
	}

	return ctx.JSON(fiber.Map{"message": "Logged out successfully"})
}

// CheckAuthenticated runs behind the strict gate, by the time we get
// here the token passed all three steps.
func (a *AuthController) CheckAuthenticated(ctx *fiber.Ctx) error {
	claims, ok := GetClaims(ctx.UserContext())
	if !ok {
		claims, ok = GetRequestClaims(ctx, a.ContextKey)
	}
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"isAuthenticated": false,
			"message":         "Invalid Token",
		})
	}

	return ctx.JSON(fiber.Map{
		"isAuthenticated": true,
		"message":         "Token is valid",
		"user": fiber.Map{
			"id":   claims.UserID(),
			"role": claims.Role(),
		},
	})
}

// ValidatePhoneNumber checks an optional mobile number against the
// region's numbering plan.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		num, err := phonenumbers.Parse(s, region)
		if err != nil {
			return fmt.Errorf("invalid mobile number: %v", err)
		}
		if !phonenumbers.IsValidNumber(num) {
			return fmt.Errorf("invalid mobile number for region %s", region)
		}
		return nil
	}
}

// ValidateRoleName checks an optional role against the known role set.
func ValidateRoleName(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, err := ParseRole(s)
	return err
}
