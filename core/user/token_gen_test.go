package user

import (
	"testing"
	"time"

	"github.com/himanshhhhuv/studentinfo/core"
)

func TestMakeVerifyPasswordResetToken(t *testing.T) {
	conf := core.NewTestConfig()

	now := time.Now()
	usr := User{
		ID:        "0c4e1fe0-0000-0000-0000-000000000001",
		FirstName: "Test",
		LastName:  "User",
		Email:     "t@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken, err := MakePasswordResetToken(conf, usr)
	if err != nil {
		t.Fatalf("MakePasswordResetToken() error = %v", err)
	}

	// generate an expired token
	dayLate := conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakePasswordResetToken(conf, usr)
	if err != nil {
		t.Fatalf("MakePasswordResetToken() error = %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: errInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyPasswordResetToken(conf, tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyPasswordResetToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenScopesDoNotOverlap(t *testing.T) {
	conf := core.NewTestConfig()

	usr := User{ID: "abc", Email: "t@test.test"}
	_ = usr.SetPassword("pwd")
	reg := Registration{Email: usr.Email, PasswordHash: usr.PasswordHash}

	resetToken, err := MakePasswordResetToken(conf, usr)
	if err != nil {
		t.Fatal(err)
	}
	verifToken, err := MakeEmailVerificationToken(conf, reg)
	if err != nil {
		t.Fatal(err)
	}

	if err = verifyEmailVerificationToken(conf, reg, resetToken); err != errInvalidToken {
		t.Errorf("reset token accepted for verification; error = %v", err)
	}
	if err = verifyPasswordResetToken(conf, usr, verifToken); err != errInvalidToken {
		t.Errorf("verification token accepted for reset; error = %v", err)
	}
	if err = verifyEmailVerificationToken(conf, reg, verifToken); err != nil {
		t.Errorf("verifyEmailVerificationToken() error = %v", err)
	}
}

func TestPasswordResetTokenSelfInvalidates(t *testing.T) {
	conf := core.NewTestConfig()

	usr := User{ID: "abc", Email: "t@test.test"}
	_ = usr.SetPassword("pwd")

	token, err := MakePasswordResetToken(conf, usr)
	if err != nil {
		t.Fatal(err)
	}

	// changing the password invalidates outstanding tokens
	_ = usr.SetPassword("new-pwd")
	if err = verifyPasswordResetToken(conf, usr, token); err != errInvalidToken {
		t.Errorf("token survived password change; error = %v", err)
	}

	// a fresh login invalidates outstanding tokens
	_ = usr.SetPassword("pwd")
	token, err = MakePasswordResetToken(conf, usr)
	if err != nil {
		t.Fatal(err)
	}
	usr.LastLogin = time.Now()
	if err = verifyPasswordResetToken(conf, usr, token); err != errInvalidToken {
		t.Errorf("token survived login; error = %v", err)
	}
}
