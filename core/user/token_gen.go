package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/himanshhhhuv/studentinfo/core"
)

// Token scopes. The scope is mixed into the signature so a verification
// token cannot be replayed as a reset token or vice versa.
const (
	scopePasswordReset     = "password_reset"
	scopeEmailVerification = "email_verification"
)

var (
	salt    = []byte("studentinfo.core.user.token_gen")
	NowFunc = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes given User ID
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// MakePasswordResetToken generates a password reset token for a given User.
// The token embeds the password hash and last login so it self-invalidates
// once used or once the user logs in again.
func MakePasswordResetToken(conf *core.Config, usr User) (string, error) {
	return makeTokenWithTimestamp(conf, resetHashValue(usr), numDaysSince2001(NowFunc()))
}

func verifyPasswordResetToken(conf *core.Config, usr User, token string) error {
	return verifyToken(conf, resetHashValue(usr), token, conf.PasswordResetTimeoutDelta)
}

// MakeEmailVerificationToken generates an email verification token for a
// pending Registration.
func MakeEmailVerificationToken(conf *core.Config, reg Registration) (string, error) {
	return makeTokenWithTimestamp(conf, verificationHashValue(reg), numDaysSince2001(NowFunc()))
}

func verifyEmailVerificationToken(conf *core.Config, reg Registration, token string) error {
	return verifyToken(conf, verificationHashValue(reg), token, conf.EmailVerificationTimeoutDelta)
}

// verifyToken checks that a token signed over `val` is genuine and within its
// timeout window.
func verifyToken(conf *core.Config, val []byte, token string, timeout time.Duration) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken, err := makeTokenWithTimestamp(conf, val, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(NowFunc()) - ts) > int(timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(conf *core.Config, val []byte, ts int) (string, error) {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	sig, err := sign(conf, append(val, []byte(strconv.Itoa(ts))...))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", tsB32, sig), nil
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(conf *core.Config, val []byte) (string, error) {
	key := sha256.Sum256(append(salt, conf.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	if _, err := h.Write(val); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

func resetHashValue(usr User) []byte {
	var val bytes.Buffer
	val.WriteString(scopePasswordReset)
	val.WriteString(usr.ID)
	val.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		val.WriteString(usr.LastLogin.String())
	}
	return val.Bytes()
}

func verificationHashValue(reg Registration) []byte {
	var val bytes.Buffer
	val.WriteString(scopeEmailVerification)
	val.WriteString(reg.Email)
	val.Write(reg.PasswordHash)
	return val.Bytes()
}
