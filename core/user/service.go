package user

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/himanshhhhuv/studentinfo/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrUserExists      = errors.New("a user with this email already exists")
	ErrNotVerified     = errors.New("email address not verified")
	ErrResetThrottled  = errors.New("a reset email was sent recently; please wait before retrying")
	ErrNoRegistration  = errors.New("no pending registration for this email")
	ErrWrongPassword   = errors.New("wrong password")
	ErrCannotSelfApply = errors.New("operation cannot target own account")
)

type (
	// GetFilter selects a single user by ID or email. ID wins if both are set.
	GetFilter struct {
		ID    string
		Email string
	}

	// Repository abstracts the `users` collection of the document store.
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND on QueryFilter fields; Search is a
		// case-insensitive substring match on name, email or phone number.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	// OwnedDataRepository deletes a user's dependent documents (posts and
	// comments collections, matched on userId) during account deletion.
	OwnedDataRepository interface {
		DeleteOwnedDocuments(ctx context.Context, uid string) error
	}

	// RegistrationStore stashes pending sign-ups until the verification link
	// is confirmed. Records carry a TTL and are cleared after use.
	RegistrationStore interface {
		Put(ctx context.Context, reg Registration) error
		Get(ctx context.Context, email string) (Registration, error)
		Delete(ctx context.Context, email string) error
	}

	// ResetThrottle rate-limits password reset emails per target email
	// address, server-side.
	ResetThrottle interface {
		// Reserve returns false when a reset was already requested for this
		// email within the cooldown window.
		Reserve(ctx context.Context, email string) (bool, error)
	}

	ServiceInterface interface {
		CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error
		Register(ctx context.Context, nr NewRegistration) error
		ResendVerification(ctx context.Context, email string) error
		ConfirmEmailVerification(ctx context.Context, ve VerifyEmail) (User, error)
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		ChangeRole(ctx context.Context, id, role string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetFormFilled(ctx context.Context, usr User) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
		ChangePassword(ctx context.Context, usr User, cp ChangePassword) error
		DeleteAccount(ctx context.Context, usr User, password string) error
		DeleteUser(ctx context.Context, actor User, id string) error
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		conf     *core.Config
		repo     Repository
		owned    OwnedDataRepository
		regStore RegistrationStore
		throttle ResetThrottle
		mailSvc  core.EmailService
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	owned OwnedDataRepository,
	regStore RegistrationStore,
	throttle ResetThrottle,
	mailSvc core.EmailService,
) *service {
	return &service{
		conf:     conf,
		repo:     repo,
		owned:    owned,
		regStore: regStore,
		throttle: throttle,
		mailSvc:  mailSvc,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrUserExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register stashes a pending registration and emails a verification link.
// The profile document is only created once the email is verified; until
// then the sign-up can be repeated and simply overwrites the stash.
func (svc *service) Register(ctx context.Context, nr NewRegistration) error {
	reg := Registration{
		Email:       nr.Email,
		FirstName:   nr.FirstName,
		LastName:    nr.LastName,
		PhoneNumber: nr.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	tmpUsr := User{}
	if err := tmpUsr.SetPassword(nr.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	reg.PasswordHash = tmpUsr.PasswordHash

	if err := svc.regStore.Put(ctx, reg); err != nil {
		return errors.Wrap(err, "stashing registration")
	}
	svc.sendVerificationMail(reg)
	return nil
}

// ResendVerification re-sends the verification link for a pending registration.
func (svc *service) ResendVerification(ctx context.Context, email string) error {
	reg, err := svc.regStore.Get(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	svc.sendVerificationMail(reg)
	return nil
}

// ConfirmEmailVerification turns a pending registration into a profile
// document (role defaults to student) and clears the stash. Re-confirming an
// already-verified registration is idempotent: the existing user is returned.
func (svc *service) ConfirmEmailVerification(ctx context.Context, ve VerifyEmail) (User, error) {
	email, err := decodeUID(ve.UID)
	if err != nil {
		return User{}, core.NewValidationError(errInvalidToken)
	}

	reg, err := svc.regStore.Get(ctx, email)
	if err != nil {
		if err != ErrNoRegistration {
			return User{}, errors.Wrap(err, "reading registration stash")
		}
		// stash already cleared: the link was used before. The profile
		// keeps the stashed password hash, so the original token still
		// verifies; anything else is rejected.
		if usr, gerr := svc.repo.GetUser(ctx, GetFilter{Email: email}); gerr == nil {
			used := Registration{Email: usr.Email, PasswordHash: usr.PasswordHash}
			if verifyEmailVerificationToken(svc.conf, used, ve.Token) == nil {
				return usr, nil
			}
		}
		return User{}, core.NewValidationError(errInvalidToken)
	}

	if err = verifyEmailVerificationToken(svc.conf, reg, ve.Token); err != nil {
		return User{}, core.NewValidationError(err)
	}

	now := time.Now().UTC()
	usr := User{
		FirstName:     reg.FirstName,
		LastName:      reg.LastName,
		Email:         reg.Email,
		PhoneNumber:   reg.PhoneNumber,
		Role:          RoleStudent,
		EmailVerified: true,
		IsActive:      true,
		PasswordHash:  reg.PasswordHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	if err = svc.regStore.Delete(ctx, email); err != nil {
		// the profile exists; a stale stash only costs a redundant confirm
		return usr, nil
	}
	return usr, nil
}

// Create is the admin path: the profile is written directly, pre-verified.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	role := nu.Role
	if role == "" {
		role = RoleStudent
	}
	usr := User{
		FirstName:     nu.FirstName,
		LastName:      nu.LastName,
		Email:         nu.Email,
		PhoneNumber:   nu.PhoneNumber,
		Role:          role,
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.Ordering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	usr.FirstName = uu.FirstName
	usr.LastName = uu.LastName
	usr.PhoneNumber = uu.PhoneNumber
	usr.Email = uu.Email
	if uu.Role != "" {
		usr.Role = uu.Role
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// ChangeRole writes the role field only; everything else on the profile is
// left untouched.
func (svc *service) ChangeRole(ctx context.Context, id, role string) (User, error) {
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		return User{}, err
	}
	usr.Role = role
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetFormFilled flips the one-way formFilled flag.
func (svc *service) SetFormFilled(ctx context.Context, usr User) (User, error) {
	usr.FormFilled = true
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// RequestPasswordReset emails a reset link. Requests are throttled per target
// email: a second request within the cooldown window is rejected.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)

	ok, err := svc.throttle.Reserve(ctx, email)
	if err != nil {
		return errors.Wrap(err, "reserving reset cooldown")
	}
	if !ok {
		return ErrResetThrottled
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	if err != nil {
		return err
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: id})
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyPasswordResetToken(svc.conf, usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// ChangePassword re-authenticates with the current password before setting
// the new one. Failure leaves the old password intact.
func (svc *service) ChangePassword(ctx context.Context, usr User, cp ChangePassword) error {
	if err := usr.CheckPassword(cp.CurrentPassword); err != nil {
		return core.NewValidationError(ErrWrongPassword,
			core.FieldError{Field: "current_password", Error: ErrWrongPassword.Error()})
	}
	if err := usr.SetPassword(cp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err := svc.repo.UpdateUser(ctx, usr)
	return err
}

// DeleteAccount is the self-service saga: re-authenticate, require a verified
// email, cascade owned posts/comments, then delete the profile document last
// so a mid-saga failure leaves a retryable account rather than an orphan.
func (svc *service) DeleteAccount(ctx context.Context, usr User, password string) error {
	if !usr.EmailVerified {
		return ErrNotVerified
	}
	if err := usr.CheckPassword(password); err != nil {
		return core.NewValidationError(ErrWrongPassword,
			core.FieldError{Field: "password", Error: ErrWrongPassword.Error()})
	}

	if err := svc.owned.DeleteOwnedDocuments(ctx, usr.ID); err != nil {
		return errors.Wrap(err, "deleting owned documents")
	}
	if _, err := svc.repo.DeleteUsersByID(ctx, usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}

// DeleteUser is the admin saga. The identity/profile document goes first: if
// that step fails nothing else is touched and the directory row survives.
func (svc *service) DeleteUser(ctx context.Context, actor User, id string) error {
	if actor.ID == id {
		return ErrCannotSelfApply
	}
	cnt, err := svc.repo.DeleteUsersByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if cnt == 0 {
		return ErrNotFound
	}
	if err = svc.owned.DeleteOwnedDocuments(ctx, id); err != nil {
		// user is gone; leftover owned docs are re-collectable
		return errors.Wrap(err, "deleting owned documents")
	}
	return nil
}

// Delete removes identity/profile documents by ID. This backs the privileged
// identity-deletion endpoint; no cascade.
func (svc *service) Delete(ctx context.Context, ids ...string) error {
	cnt, err := svc.repo.DeleteUsersByID(ctx, ids...)
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

// Mail

const (
	verificationTemplate  = "email-verification"
	passwordResetTemplate = "password-reset"
)

type mailData struct {
	Name string
	URL  string
}

func init() {
	core.RegisterEmailTemplate(verificationTemplate,
		"Hi {{.Data.Name}},\n\nPlease verify your email address by following this link:\n{{.Data.URL}}\n\nIf you did not sign up, ignore this email.\n",
		"<p>Hi {{.Data.Name}},</p><p>Please verify your email address by following <a href=\"{{.Data.URL}}\">this link</a>.</p><p>If you did not sign up, ignore this email.</p>",
	)
	core.RegisterEmailTemplate(passwordResetTemplate,
		"Hi {{.Data.Name}},\n\nYou requested a password reset. Follow this link to choose a new password:\n{{.Data.URL}}\n\nIf this wasn't you, ignore this email.\n",
		"<p>Hi {{.Data.Name}},</p><p>You requested a password reset. Follow <a href=\"{{.Data.URL}}\">this link</a> to choose a new password.</p><p>If this wasn't you, ignore this email.</p>",
	)
}

func (svc *service) sendVerificationMail(reg Registration) {
	token, err := MakeEmailVerificationToken(svc.conf, reg)
	if err != nil {
		return
	}
	url := fmt.Sprintf("%s/verifyemail?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(reg.Email), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: reg.FirstName + " " + reg.LastName, Address: reg.Email}},
		Subject:      "Verify your email",
		TemplateName: verificationTemplate,
		TemplateData: mailData{Name: reg.FirstName, URL: url},
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	token, err := MakePasswordResetToken(svc.conf, usr)
	if err != nil {
		return
	}
	url := fmt.Sprintf("%s/resetpassword?uid=%s&token=%s", svc.conf.FrontendBaseURL, EncodeUID(usr.ID), token)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: passwordResetTemplate,
		TemplateData: mailData{Name: usr.FirstName, URL: url},
	})
}
