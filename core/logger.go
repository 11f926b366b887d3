package core

// Logger is implemented by services/logger.
// expected args: error, map[string]interface{}, or a Person to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the caller a log entry is about.
type Person struct {
	ID    string
	Name  string
	Email string
}
