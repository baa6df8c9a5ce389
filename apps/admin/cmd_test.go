package main

import (
	"bytes"
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/himanshhhhuv/studentinfo/core/user"
	inmemdb "github.com/himanshhhhuv/studentinfo/storage/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	usrRepo = inmemdb.NewUserRepository(inmemdb.NewDB())
	return &commandLine{usrRepo: usrRepo}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := user.User{FirstName: "Awe", LastName: "Some", Email: "awe@test.cd", IsActive: true}
	_ = usr.SetPassword("mdr")
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed: %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing names", args: []string{"adduser", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "new@test.cd", "-first", "New", "-last", "User"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-email", "new@test.cd", "-first", "New", "-last", "User"}, extra: extra{pwd: "s3cr3t"}},
		{name: "create admin", args: []string{"adduser", "-email", "root@test.cd", "-first", "Root", "-last", "User", "-admin"}, extra: extra{pwd: "s3cr3t"}},
		{name: "update existing", args: []string{"adduser", "-email", "new@test.cd", "-first", "Renamed", "-last", "User"}, extra: extra{pwd: "n3w"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "new@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if usr.FirstName != "Renamed" {
		t.Errorf("FirstName = %q; want %q", usr.FirstName, "Renamed")
	}
	if !usr.EmailVerified || !usr.IsActive {
		t.Error("expected user to be verified and active")
	}

	admin, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "root@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if !admin.IsAdmin() {
		t.Errorf("Role = %q; want %q", admin.Role, user.RoleAdmin)
	}
}

func Test_commandLine_ensureIndexes(t *testing.T) {
	cli := setup(t)

	var called bool
	ensureIndexesFunc = func(ctx context.Context, db *mongo.Database) error {
		called = true
		return nil
	}

	if err := cli.run([]string{"admin", "ensureindexes"}); err != nil {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
	if !called {
		t.Error("expected index creation to run")
	}
}
