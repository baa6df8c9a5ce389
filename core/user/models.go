package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/himanshhhhuv/studentinfo/core"
)

// Roles. A user holds exactly one.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Dashboard routes served by the frontend, one per portal.
const (
	StudentDashboard = "/dashboard"
	TeacherDashboard = "/teacherdashboard"
	AdminDashboard   = "/admindashboard"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleAdmin}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RouteForRole maps a role to its dashboard route. Unknown or empty roles
// land on the student dashboard; the router must always resolve somewhere.
func RouteForRole(role string) string {
	switch role {
	case RoleTeacher:
		return TeacherDashboard
	case RoleAdmin:
		return AdminDashboard
	default:
		return StudentDashboard
	}
}

// User is both the profile document and the login identity, stored in the
// `users` collection keyed by uid.
type User struct {
	ID            string    `json:"id" bson:"_id"`
	FirstName     string    `json:"first_name" bson:"firstName"`
	LastName      string    `json:"last_name" bson:"lastName"`
	Email         string    `json:"email" bson:"email"`
	PhoneNumber   string    `json:"phone_number" bson:"phoneNumber"`
	Role          string    `json:"role" bson:"role"`
	FormFilled    bool      `json:"form_filled" bson:"formFilled"`
	EmailVerified bool      `json:"email_verified" bson:"emailVerified"`
	IsActive      bool      `json:"is_active" bson:"isActive"`
	PasswordHash  []byte    `json:"-" bson:"passwordHash"`
	CreatedAt     time.Time `json:"created_at" bson:"createdAt"` // UTC
	UpdatedAt     time.Time `json:"updated_at" bson:"updatedAt"` // UTC
	LastLogin     time.Time `json:"last_login" bson:"lastLogin"` // UTC
}

func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return !u.IsAdmin() && !u.IsTeacher() }

// Dashboard returns the route this user's session resolves to.
func (u *User) Dashboard() string { return RouteForRole(u.Role) }

// Registration is the pending sign-up record bridging sign-up and email
// verification. It is stashed (with a TTL) until the verification link is
// confirmed, then turned into a User and cleared.
type Registration struct {
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// NewRegistration contains information needed to sign up.
type NewRegistration struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nr *NewRegistration) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nr.FirstName = core.CleanString(nr.FirstName)
	nr.LastName = core.CleanString(nr.LastName)
	nr.PhoneNumber = core.CleanString(nr.PhoneNumber)
	nr.Email = core.CleanString(nr.Email, true /* lower */)

	if err := validate.Struct(nr); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nr.Email)
}

// NewUser contains information needed by an admin to create a User directly,
// bypassing email verification.
type NewUser struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.PhoneNumber = core.CleanString(nu.PhoneNumber)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,role"`
	IsActive        *bool  `json:"is_active"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc ServiceInterface) error {
	if v := core.CleanString(uu.FirstName); v != "" {
		uu.FirstName = v
	} else {
		uu.FirstName = origUsr.FirstName
	}
	if v := core.CleanString(uu.LastName); v != "" {
		uu.LastName = v
	} else {
		uu.LastName = origUsr.LastName
	}
	if v := core.CleanString(uu.PhoneNumber); v != "" {
		uu.PhoneNumber = v
	} else {
		uu.PhoneNumber = origUsr.PhoneNumber
	}
	if v := core.CleanString(uu.Email, true /* lower */); v != "" {
		uu.Email = v
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Email, origUsr)
}

// ChangeRole is the admin directory's role-change payload.
type ChangeRole struct {
	Role string `json:"role" validate:"required,role"`
}

func (cr *ChangeRole) Validate(validate *validator.Validate) error {
	cr.Role = core.CleanString(cr.Role, true /* lower */)
	return validate.Struct(cr)
}

// VerifyEmail confirms ownership of a registered email address.
type VerifyEmail struct {
	UID   string `json:"uid,omitempty" validate:"required"`
	Token string `json:"token,omitempty" validate:"required"`
}

func (ve VerifyEmail) Validate(validate *validator.Validate) error { return validate.Struct(ve) }

type ResetUserPassword struct {
	UID             string `json:"uid,omitempty" validate:"required"`
	Token           string `json:"token,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

// ChangePassword is the self-service password change payload. The current
// password re-authenticates the request.
type ChangePassword struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (cp ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// DeleteAccount is the self-service deletion payload.
type DeleteAccount struct {
	Password string `json:"password" validate:"required"`
}

func (da DeleteAccount) Validate(validate *validator.Validate) error {
	return validate.Struct(da)
}

// QueryFilter narrows the admin user directory.
// Role filters to one role ("" means all); Search does a case-insensitive
// substring match on name, email or phone number.
type QueryFilter struct {
	Search string `query:"search"`
	Role   string `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	if qf.Role == "all" {
		qf.Role = ""
	}
}
