package core

// Logger is implemented by any logging service the app reports to.
// Implementations may inspect args for well-known types (e.g. the logged-in
// user) and attach them to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
