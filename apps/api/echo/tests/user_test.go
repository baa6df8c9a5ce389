package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	. "github.com/himanshhhhuv/studentinfo/apps/api/echo"
	"github.com/himanshhhhuv/studentinfo/core/user"
	emailsvc "github.com/himanshhhhuv/studentinfo/services/email"
)

func TestUserRegistrationFlow(t *testing.T) {
	env := setup(t)

	// sign up
	body := []byte(`{
		"first_name": "Jane",
		"last_name": "Doe",
		"phone_number": "+243123456789",
		"email": "jane@test.cd",
		"password": "S3cur3!pass",
		"password_confirm": "S3cur3!pass"
	}`)
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("register code = %v; want %v; body %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	// no profile document yet
	if _, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{Email: "jane@test.cd"}); err != user.ErrNotFound {
		t.Fatalf("expected no user before verification; err = %v", err)
	}

	// login is impossible before verification
	req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "jane@test.cd", "password": "S3cur3!pass"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("pre-verification login code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// confirm the emailed link
	uid, token := lastEmailLink(t)
	confirmBody := marchallObj(t, map[string]string{"uid": uid, "token": token})
	req, rec = newRequest(http.MethodPost, "/v1/users/verify-email-confirm", confirmBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	usr, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{Email: "jane@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if !usr.EmailVerified || !usr.IsActive {
		t.Error("expected verified active user")
	}
	if usr.Role != user.RoleStudent {
		t.Errorf("Role = %q; want %q", usr.Role, user.RoleStudent)
	}

	// the link is idempotent once used
	req, rec = newRequest(http.MethodPost, "/v1/users/verify-email-confirm", confirmBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("re-confirm code = %v; want %v", rec.Code, http.StatusOK)
	}

	// a bogus token for a verified address is not a probe for account existence
	badBody := marchallObj(t, map[string]string{"uid": uid, "token": token + "x"})
	req, rec = newRequest(http.MethodPost, "/v1/users/verify-email-confirm", badBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("tampered re-confirm code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// login lands on the student dashboard
	req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "jane@test.cd", "password": "S3cur3!pass"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.Redirect != user.StudentDashboard {
		t.Errorf("Redirect = %q; want %q", res.Redirect, user.StudentDashboard)
	}
}

func TestUserRegistrationRejectsBadPayloads(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Taken", "User", "taken@test.cd", "S3cur3!pass", user.RoleStudent)

	tests := []httpTest{
		{name: "missing fields", body: []byte(`{"email": "a@test.cd"}`), wantCode: http.StatusBadRequest},
		{name: "password mismatch", body: []byte(`{"first_name": "A", "last_name": "B", "phone_number": "+243", "email": "a@test.cd", "password": "S3cur3!pass", "password_confirm": "other"}`), wantCode: http.StatusBadRequest},
		{name: "weak password", body: []byte(`{"first_name": "A", "last_name": "B", "phone_number": "+243", "email": "a@test.cd", "password": "abc", "password_confirm": "abc"}`), wantCode: http.StatusBadRequest},
		{name: "taken email", body: []byte(`{"first_name": "A", "last_name": "B", "phone_number": "+243", "email": "taken@test.cd", "password": "S3cur3!pass", "password_confirm": "S3cur3!pass"}`), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestLoginRoutesEveryRoleToADashboard(t *testing.T) {
	env := setup(t)

	createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	createUser(t, env.usrRepo, "Tea", "Cher", "tea@test.cd", "S3cur3!pass", user.RoleTeacher)
	createUser(t, env.usrRepo, "Add", "Min", "admin@test.cd", "S3cur3!pass", user.RoleAdmin)
	createUser(t, env.usrRepo, "Gho", "St", "ghost@test.cd", "S3cur3!pass", "ghost")
	createUser(t, env.usrRepo, "Bla", "Nk", "blank@test.cd", "S3cur3!pass", "")

	tests := []struct {
		email    string
		redirect string
	}{
		{"stu@test.cd", user.StudentDashboard},
		{"tea@test.cd", user.TeacherDashboard},
		{"admin@test.cd", user.AdminDashboard},
		{"ghost@test.cd", user.StudentDashboard}, // unknown role falls back
		{"blank@test.cd", user.StudentDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			body := marchallObj(t, map[string]string{"email": tt.email, "password": "S3cur3!pass"})
			req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("login code = %v; body %s", rec.Code, rec.Body.String())
			}
			var res LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("decoding login response: %v", err)
			}
			if res.Redirect != tt.redirect {
				t.Errorf("Redirect = %q; want %q", res.Redirect, tt.redirect)
			}
		})
	}
}

func TestLoginFailures(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "Ina", "Ctive", "ina@test.cd", "S3cur3!pass", user.RoleStudent)
	usr.IsActive = false
	if _, err := env.usrRepo.UpdateUser(testCtx(), usr); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}
	createUser(t, env.usrRepo, "Act", "Ive", "act@test.cd", "S3cur3!pass", user.RoleStudent)

	tests := []httpTest{
		{name: "unknown email", body: []byte(`{"email": "nope@test.cd", "password": "S3cur3!pass"}`), wantCode: http.StatusBadRequest},
		{name: "wrong password", body: []byte(`{"email": "act@test.cd", "password": "wrong"}`), wantCode: http.StatusBadRequest},
		{name: "deactivated account", body: []byte(`{"email": "ina@test.cd", "password": "S3cur3!pass"}`), wantCode: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestAdminUserDirectory(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	createUser(t, env.usrRepo, "Alice", "Zulu", "alice@test.cd", "S3cur3!pass", user.RoleStudent)
	createUser(t, env.usrRepo, "Bob", "Yankee", "bob@test.cd", "S3cur3!pass", user.RoleTeacher)
	createUser(t, env.usrRepo, "Carol", "Xray", "carol@school.cd", "S3cur3!pass", user.RoleStudent)
	student := createUser(t, env.usrRepo, "Dave", "Whiskey", "dave@test.cd", "S3cur3!pass", user.RoleStudent)

	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	fetch := func(t *testing.T, path, token string, wantCode int) []user.User {
		t.Helper()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		env.app.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
		}
		if wantCode != http.StatusOK {
			return nil
		}
		var users []user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
			t.Fatalf("decoding users: %v", err)
		}
		return users
	}

	t.Run("requires auth", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/users")
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})
	t.Run("requires admin", func(t *testing.T) {
		fetch(t, "/v1/users", studentToken, http.StatusForbidden)
	})
	t.Run("lists all", func(t *testing.T) {
		users := fetch(t, "/v1/users", adminToken, http.StatusOK)
		if len(users) != 5 {
			t.Errorf("len = %d; want 5", len(users))
		}
	})
	t.Run("filters by role", func(t *testing.T) {
		users := fetch(t, "/v1/users?role=student", adminToken, http.StatusOK)
		if len(users) != 3 {
			t.Errorf("len = %d; want 3", len(users))
		}
	})
	t.Run("role=all means no filter", func(t *testing.T) {
		users := fetch(t, "/v1/users?role=all", adminToken, http.StatusOK)
		if len(users) != 5 {
			t.Errorf("len = %d; want 5", len(users))
		}
	})
	t.Run("search is a case-insensitive substring match", func(t *testing.T) {
		users := fetch(t, "/v1/users?search=SCHOOL", adminToken, http.StatusOK)
		if len(users) != 1 || users[0].Email != "carol@school.cd" {
			t.Errorf("users = %+v; want carol only", users)
		}
	})
	t.Run("search and filter combine", func(t *testing.T) {
		users := fetch(t, "/v1/users?search=test.cd&role=teacher", adminToken, http.StatusOK)
		if len(users) != 1 || users[0].Email != "bob@test.cd" {
			t.Errorf("users = %+v; want bob only", users)
		}
	})
	t.Run("orders by field", func(t *testing.T) {
		users := fetch(t, "/v1/users?ordering=first_name", adminToken, http.StatusOK)
		want := []string{"Alice", "Bob", "Carol", "Dave", "Root"}
		for i, name := range want {
			if users[i].FirstName != name {
				t.Fatalf("users[%d].FirstName = %q; want %q", i, users[i].FirstName, name)
			}
		}
	})
	t.Run("descending ordering", func(t *testing.T) {
		users := fetch(t, "/v1/users?ordering=-first_name", adminToken, http.StatusOK)
		if users[0].FirstName != "Root" {
			t.Errorf("users[0].FirstName = %q; want %q", users[0].FirstName, "Root")
		}
	})
}

func TestAdminChangeRole(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	target := createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	adminToken := getToken(t, admin)

	t.Run("promotes to teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+target.ID+"/role", adminToken, []byte(`{"role": "teacher"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		usr, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{ID: target.ID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if usr.Role != user.RoleTeacher {
			t.Errorf("Role = %q; want %q", usr.Role, user.RoleTeacher)
		}
		if usr.Email != target.Email || usr.FirstName != target.FirstName {
			t.Error("role change must not touch other fields")
		}
	})
	t.Run("rejects unknown role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+target.ID+"/role", adminToken, []byte(`{"role": "wizard"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})
	t.Run("unknown user 404s", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/nope/role", adminToken, []byte(`{"role": "teacher"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func TestPasswordResetCooldown(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Vic", "Tim", "vic@test.cd", "S3cur3!pass", user.RoleStudent)

	body := []byte(`{"email": "vic@test.cd"}`)

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request code = %v; body %s", rec.Code, rec.Body.String())
	}
	if _, ok := emailsvc.LastSentMessage(); !ok {
		t.Fatal("expected a reset email")
	}

	// within the cooldown window the request is rejected
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request code = %v; want %v", rec.Code, http.StatusTooManyRequests)
	}

	// another address is unaffected
	createUser(t, env.usrRepo, "Oth", "Er", "other@test.cd", "S3cur3!pass", user.RoleStudent)
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", []byte(`{"email": "other@test.cd"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other address code = %v; want %v", rec.Code, http.StatusOK)
	}

	// past the window the request goes through again
	env.throttle.SetNow(func() time.Time { return time.Now().Add(conf.PasswordResetCooldown + time.Second) })
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("post-cooldown code = %v; want %v", rec.Code, http.StatusOK)
	}
}

func TestPasswordResetConfirmFlow(t *testing.T) {
	env := setup(t)
	createUser(t, env.usrRepo, "Vic", "Tim", "vic@test.cd", "S3cur3!pass", user.RoleStudent)

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", []byte(`{"email": "vic@test.cd"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("request code = %v; body %s", rec.Code, rec.Body.String())
	}

	uid, token := lastEmailLink(t)
	confirmBody := marchallObj(t, map[string]string{
		"uid":              uid,
		"token":            token,
		"password":         "N3w$ecret!",
		"password_confirm": "N3w$ecret!",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", confirmBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm code = %v; body %s", rec.Code, rec.Body.String())
	}

	// the token self-invalidates once used
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", confirmBody)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("token reuse code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// the new password works
	req, rec = newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "vic@test.cd", "password": "N3w$ecret!"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login code = %v; body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminTriggeredPasswordReset(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	target := createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	adminToken := getToken(t, admin)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/"+target.ID+"/password-reset", adminToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("expected a reset email")
	}
	if msg.To[0].Address != target.Email {
		t.Errorf("To = %q; want %q", msg.To[0].Address, target.Email)
	}

	// the same cooldown applies
	req, rec = newAuthRequest(http.MethodPost, "/v1/users/"+target.ID+"/password-reset", adminToken)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusTooManyRequests)
	}
}

func TestAdminDeleteUserCascades(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	target := createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	env.ownedRepo.AddOwnedDocument(target.ID, "post-1")
	env.ownedRepo.AddOwnedDocument(target.ID, "comment-1")
	adminToken := getToken(t, admin)

	t.Run("cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+admin.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
	t.Run("deletes user and owned documents", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+target.ID, adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{ID: target.ID}); err != user.ErrNotFound {
			t.Errorf("expected user gone; err = %v", err)
		}
		if docs := env.ownedRepo.OwnedDocuments(target.ID); len(docs) != 0 {
			t.Errorf("owned docs survived: %v", docs)
		}
	})
	t.Run("unknown user 404s", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/nope", adminToken)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func TestDeleteIdentityLeavesOwnedDocuments(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	target := createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	env.ownedRepo.AddOwnedDocument(target.ID, "post-1")
	adminToken := getToken(t, admin)

	t.Run("requires admin", func(t *testing.T) {
		studentToken := getToken(t, target)
		req, rec := newAuthRequest(http.MethodDelete, "/v1/identities", studentToken, marchallObj(t, map[string]string{"userId": admin.ID}))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
	t.Run("cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/identities", adminToken, marchallObj(t, map[string]string{"userId": admin.ID}))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
	t.Run("deletes identity only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/identities", adminToken, marchallObj(t, map[string]string{"userId": target.ID}))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if _, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{ID: target.ID}); err != user.ErrNotFound {
			t.Errorf("expected user gone; err = %v", err)
		}
		if docs := env.ownedRepo.OwnedDocuments(target.ID); len(docs) != 1 {
			t.Errorf("owned docs = %v; want them untouched", docs)
		}
	})
	t.Run("unknown user 404s", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/identities", adminToken, marchallObj(t, map[string]string{"userId": "nope"}))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func TestAdminCreateAndUpdateUser(t *testing.T) {
	env := setup(t)

	admin := createUser(t, env.usrRepo, "Root", "Admin", "root@test.cd", "S3cur3!pass", user.RoleAdmin)
	adminToken := getToken(t, admin)

	var created user.User
	t.Run("create", func(t *testing.T) {
		body := []byte(`{
			"first_name": "New",
			"last_name": "Teacher",
			"email": "newt@test.cd",
			"role": "teacher",
			"password": "S3cur3!pass",
			"password_confirm": "S3cur3!pass"
		}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/users", adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("decoding user: %v", err)
		}
		if created.Role != user.RoleTeacher || !created.EmailVerified {
			t.Errorf("created = %+v; want pre-verified teacher", created)
		}
	})
	t.Run("update", func(t *testing.T) {
		body := []byte(`{"first_name": "Renamed", "email": "newt@test.cd"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+created.ID, adminToken, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		usr, err := env.usrRepo.GetUser(testCtx(), user.GetFilter{ID: created.ID})
		if err != nil {
			t.Fatalf("GetUser() failed: %v", err)
		}
		if usr.FirstName != "Renamed" || usr.LastName != "Teacher" {
			t.Errorf("usr = %+v; want renamed first name, original last name", usr)
		}
	})
	t.Run("roles listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/roles", adminToken)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles)}, rec)
	})
}

func TestTokenRefresh(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrRepo, "Stu", "Dent", "stu@test.cd", "S3cur3!pass", user.RoleStudent)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
}
