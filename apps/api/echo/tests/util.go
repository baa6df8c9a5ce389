package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/himanshhhhuv/studentinfo/apps/api/echo"
	"github.com/himanshhhhuv/studentinfo/core"
	"github.com/himanshhhhuv/studentinfo/core/event"
	"github.com/himanshhhhuv/studentinfo/core/student"
	"github.com/himanshhhhuv/studentinfo/core/user"
	emailsvc "github.com/himanshhhhuv/studentinfo/services/email"
	inmemdb "github.com/himanshhhhuv/studentinfo/storage/inmem"
)

var (
	conf = core.NewTestConfig()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testEnv struct {
	app       Server
	usrRepo   user.Repository
	evtRepo   event.Repository
	stdRepo   student.Repository
	ownedRepo interface {
		user.OwnedDataRepository
		AddOwnedDocument(uid, docID string)
		OwnedDocuments(uid string) []string
	}
	throttle interface {
		user.ResetThrottle
		SetNow(func() time.Time)
	}
	usrSvc user.ServiceInterface
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	env := &testEnv{
		usrRepo:   inmemdb.NewUserRepository(db),
		evtRepo:   inmemdb.NewEventRepository(db),
		stdRepo:   inmemdb.NewStudentInfoRepository(db),
		ownedRepo: inmemdb.NewOwnedDataRepository(db),
		throttle:  inmemdb.NewResetThrottle(db, conf.PasswordResetCooldown),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	env.usrSvc = user.NewServiceMock(
		env.usrRepo,
		env.ownedRepo,
		inmemdb.NewRegistrationStore(db),
		env.throttle,
		mailSvc,
	)
	evtSvc := event.NewService(env.evtRepo)
	stdSvc := student.NewService(env.stdRepo, env.usrSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	env.app = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     nopLogger{},
		UserSvc:    env.usrSvc,
		EventSvc:   evtSvc,
		StudentSvc: stdSvc,
		Validate:   validate,
		Translator: translator,
	})
	return env
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(conf, usr)
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// createUser seeds an active, verified user straight into the repository.
func createUser(t *testing.T, repo user.Repository, first, last, email, pwd, role string) user.User {
	t.Helper()
	usr := user.User{
		FirstName:     first,
		LastName:      last,
		Email:         email,
		Role:          role,
		EmailVerified: true,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	usr, err := repo.CreateUser(testCtx(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func testCtx() context.Context { return context.Background() }

var linkRe = regexp.MustCompile(`https?://\S+\?uid=(\S+)&token=(\S+)`)

// lastEmailLink pulls the uid and token out of the most recently sent email.
func lastEmailLink(t *testing.T) (uid, token string) {
	t.Helper()
	msg, ok := emailsvc.LastSentMessage()
	if !ok {
		t.Fatal("no email was sent")
	}
	m := linkRe.FindStringSubmatch(msg.TextContent)
	if m == nil {
		t.Fatalf("no link found in email: %q", msg.TextContent)
	}
	uid, token = m[1], m[2]
	if u, err := url.QueryUnescape(uid); err == nil {
		uid = u
	}
	return uid, token
}
