package accounts

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-accounts/middleware/gate"
)

// RegisterUserRoutes mounts the directory endpoints on the app.
func RegisterUserRoutes(app fiber.Router, controller *UsersController) {
	grp := app.Group(controller.Routes.Prefix)

	grp.Get(controller.Routes.List, controller.List)
	grp.Get(controller.Routes.ByRole, controller.ListByRole)
	grp.Get(controller.Routes.ByID, controller.GetByID)
	grp.Put(controller.Routes.ByID, controller.Update)
	grp.Delete(controller.Routes.ByID, controller.Delete)
}

type UsersControllerRoutes struct {
	Prefix string
	List   string
	ByRole string
	ByID   string
}

type UsersController struct {
	Logger Logger
	Repo   RepositoryManager
	Tokens TokenIssuer
	Codec  PasswordCodec
	Routes *UsersControllerRoutes

	// SanitizeList strips credentials from the public listing.
	SanitizeList bool
	// SanitizeRoleList controls the role listing. Off by default, the
	// role endpoint has always returned raw rows and clients grew to
	// depend on the extra fields.
	SanitizeRoleList bool
}

func NewUsersController(repo RepositoryManager, tokens TokenIssuer, codec PasswordCodec) *UsersController {
	return &UsersController{
		Logger: defLogger{},
		Repo:   repo,
		Tokens: tokens,
		Codec:  codec,
		Routes: &UsersControllerRoutes{
			Prefix: "/users",
			List:   "/list",
			ByRole: "/role/:role",
			ByID:   "/:id",
		},
		SanitizeList:     true,
		SanitizeRoleList: false,
	}
}

// WithLogger sets the logger, fluent interface
func (u *UsersController) WithLogger(logger Logger) *UsersController {
	if logger != nil {
		u.Logger = logger
	}
	return u
}

// List returns every account except administrators.
func (u *UsersController) List(ctx *fiber.Ctx) error {
	records, err := u.Repo.Users().List(ctx.UserContext(), RoleAdmin)
	if err != nil {
		u.Logger.Error("users list: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Internal server error"})
	}

	if u.SanitizeList {
		for i, record := range records {
			records[i] = record.Sanitized()
		}
	}

	return ctx.JSON(records)
}

// ListByRole returns every account holding the given role.
func (u *UsersController) ListByRole(ctx *fiber.Ctx) error {
	role, err := ParseRole(ctx.Params("role"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Invalid role"})
	}

	records, err := u.Repo.Users().ListByRole(ctx.UserContext(), role)
	if err != nil {
		u.Logger.Error("users list by role: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Internal server error"})
	}

	if u.SanitizeRoleList {
		for i, record := range records {
			records[i] = record.Sanitized()
		}
	}

	return ctx.JSON(records)
}

func (u *UsersController) GetByID(ctx *fiber.Ctx) error {
	id, _, ok := u.authorizeOwnerOrAdmin(ctx)
	if !ok {
		return nil
	}

	record, err := u.Repo.Users().GetByID(ctx.UserContext(), id)
	if err != nil {
		return u.renderLookupError(ctx, err)
	}

	return ctx.JSON(record.Sanitized())
}

// UpdateUserPayload is the account patch payload, zero fields are left
// untouched.
type UpdateUserPayload struct {
	Name     string `json:"name"`
	Username string `json:"user_name"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will validate the payload
func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Length(3, 100)),
		validation.Field(&r.Password, validation.Length(6, 100)),
		validation.Field(&r.Role, validation.By(ValidateRoleName)),
	)
}

func (u *UsersController) Update(ctx *fiber.Ctx) error {
	id, claims, ok := u.authorizeOwnerOrAdmin(ctx)
	if !ok {
		return nil
	}

	payload := new(UpdateUserPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": "Failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"error": err.Error()})
	}

	// Only administrators may move an account across roles.
	if payload.Role != "" && !claims.IsAtLeast(string(RoleAdmin)) {
		return ctx.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"message": ErrNotEligible.Message})
	}

	record := &User{ID: id}
	record.Name = payload.Name
	record.Username = payload.Username
	record.Mobile = payload.Mobile
	if payload.Role != "" {
		record.Role = UserRole(payload.Role)
	}
	if payload.Password != "" {
		encoded, err := u.Codec.Encode(payload.Password)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": "Invalid password provided"})
		}
		record.Password = encoded
	}

	updated, err := u.Repo.Users().Update(ctx.UserContext(), record)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"error": ErrUserExists.Message})
		}
		return u.renderLookupError(ctx, err)
	}

	return ctx.JSON(updated.Sanitized())
}

func (u *UsersController) Delete(ctx *fiber.Ctx) error {
	id, _, ok := u.authorizeOwnerOrAdmin(ctx)
	if !ok {
		return nil
	}

	affected, err := u.Repo.Users().Delete(ctx.UserContext(), id)
	if err != nil {
		u.Logger.Error("users delete: ", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Internal server error"})
	}

	if affected == 0 {
		return ctx.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": ErrUserNotFound.Message})
	}

	// Drop any live session so the deleted account cannot keep using
	// an already issued token.
	if _, err := u.Repo.Sessions().DeleteByUser(ctx.UserContext(), id); err != nil {
		u.Logger.Error("users delete sessions: ", "error", err)
	}

	return ctx.JSON(fiber.Map{"message": "User deleted successfully"})
}

// authorizeOwnerOrAdmin resolves the target ID and enforces the
// admin-or-self rule, writing the rejection itself when the caller does
// not qualify. Claims come from the weak extraction path, the session
// store is not consulted here.
func (u *UsersController) authorizeOwnerOrAdmin(ctx *fiber.Ctx) (uuid.UUID, gate.AuthClaims, bool) {
	claims, ok := gate.TryExtractClaims(ctx, NewGateValidator(u.Tokens))
	if !ok {
		_ = ctx.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"message": "Unauthorized"})
		return uuid.Nil, nil, false
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		_ = ctx.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": ErrUserNotFound.Message})
		return uuid.Nil, nil, false
	}

	if claims.UserID() != id.String() && !claims.HasRole(string(RoleAdmin)) {
		_ = ctx.Status(fiber.StatusForbidden).
			JSON(fiber.Map{"message": ErrNotEligible.Message})
		return uuid.Nil, nil, false
	}

	return id, claims, true
}

func (u *UsersController) renderLookupError(ctx *fiber.Ctx, err error) error {
	if IsNotFoundError(err) {
		return ctx.Status(fiber.StatusNotFound).
			JSON(fiber.Map{"error": ErrUserNotFound.Message})
	}

	u.Logger.Error("users lookup: ", "error", err)
	return ctx.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"error": "Internal server error"})
}
