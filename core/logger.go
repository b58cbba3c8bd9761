package core

// Logger is any service that can log messages.
// args may carry errors, map[string]interface{} payloads and an Actor.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies whoever triggered a logged action.
type Actor struct {
	ID       string
	Username string
	Email    string
}
