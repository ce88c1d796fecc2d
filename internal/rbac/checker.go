package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
	apperrors "github.com/lunarcms/lunar/pkg/errors"
)

// Identity is the caller on whose behalf a check runs. It is extracted
// from verified bearer claims by the transport; the checker itself
// never touches credentials.
type Identity struct {
	ID   string
	Role int
}

// IsAdmin reports whether the identity carries the reserved admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Decision is the outcome of the decision procedure.
type Decision struct {
	Allowed bool
	Reason  string
}

// Reasons surfaced to clients. Both transports share these verbatim so
// their responses cannot drift apart.
const (
	ReasonAdminGranted = "Admin access granted"
	ReasonGranted      = "Permission granted"
	ReasonDenied       = "User does not have the requested permission"
)

// checkPayload is the event-transport input shape: either a JSON object
// or the same object double-encoded as a JSON string.
type checkPayload struct {
	ModuleName string `json:"moduleName"`
	Action     string `json:"action"`
}

// Checker evaluates the (identity, module, action) decision procedure
// against the catalog and grant store. It is stateless and read-only:
// three independent point lookups, no transaction, no lock.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("rbac: db is required")
	}
	return &Checker{db: db}, nil
}

// Check answers whether the identity may perform action within the
// named module.
//
// The admin bypass is unconditional and evaluated before anything else,
// including input validation: an admin is allowed even when the module
// or permission does not exist. For everyone else the chain is
// validate → module → permission → grant, with validation and missing
// catalog entries reported as domain errors and an absent grant as a
// plain denial.
func (c *Checker) Check(ctx context.Context, identity Identity, moduleName, action string) (Decision, error) {
	if identity.IsAdmin() {
		return Decision{Allowed: true, Reason: ReasonAdminGranted}, nil
	}

	moduleName = strings.TrimSpace(moduleName)
	action = strings.TrimSpace(action)
	if moduleName == "" || action == "" {
		return Decision{}, apperrors.NewValidation("moduleName and action are required")
	}

	var module models.PermissionModule
	if err := c.db.WithContext(ctx).
		First(&module, "name = ?", moduleName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, apperrors.NewNotFound("Module not found")
		}
		return Decision{}, fmt.Errorf("rbac: load module: %w", err)
	}

	var permission models.Permission
	if err := c.db.WithContext(ctx).
		First(&permission, "module_id = ? AND action = ?", module.ID, action).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{}, apperrors.NewNotFound("Action not found for this module")
		}
		return Decision{}, fmt.Errorf("rbac: load permission: %w", err)
	}

	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", identity.ID, permission.ID).
		Count(&count).Error; err != nil {
		return Decision{}, fmt.Errorf("rbac: load grant: %w", err)
	}

	if count == 0 {
		return Decision{Allowed: false, Reason: ReasonDenied}, nil
	}
	return Decision{Allowed: true, Reason: ReasonGranted}, nil
}

// CheckEvent runs the decision procedure for the event transport, where
// the payload arrives as raw JSON that may be double-encoded as a
// string. The admin bypass is applied before parsing. Every failure
// mode (malformed payload, missing fields, unknown module or action,
// lookup errors) collapses into a plain denial: the socket never
// surfaces errors for a permission check.
func (c *Checker) CheckEvent(ctx context.Context, identity Identity, raw json.RawMessage) Decision {
	if identity.IsAdmin() {
		return Decision{Allowed: true, Reason: ReasonAdminGranted}
	}

	payload, ok := parseEventPayload(raw)
	if !ok {
		return Decision{Allowed: false, Reason: ReasonDenied}
	}

	decision, err := c.Check(ctx, identity, payload.ModuleName, payload.Action)
	if err != nil {
		return Decision{Allowed: false, Reason: ReasonDenied}
	}
	return decision
}

func parseEventPayload(raw json.RawMessage) (checkPayload, bool) {
	var payload checkPayload
	if len(raw) == 0 {
		return payload, false
	}

	if err := json.Unmarshal(raw, &payload); err == nil {
		return payload, true
	}

	// Some clients send the payload JSON-encoded inside a string.
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return payload, false
	}
	if err := json.Unmarshal([]byte(encoded), &payload); err != nil {
		return payload, false
	}
	return payload, true
}
