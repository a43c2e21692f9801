package letters

// Notification is the outcome of one user-visible operation. Every
// mutating operation yields exactly one of these: success or failure,
// never both, never silent.
type Notification struct {
	Success bool                   `json:"success"`
	Code    string                 `json:"code"` // stable identifier, e.g. "letter_sent"
	Text    string                 `json:"text"` // human-readable English fallback
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Notifier receives operation outcomes for display to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// NopNotifier discards all notifications.
var NopNotifier = NotifierFunc(func(Notification) {})

func successNote(code, text string, data map[string]interface{}) Notification {
	return Notification{Success: true, Code: code, Text: text, Data: data}
}

func errorNote(code, text string) Notification {
	return Notification{Success: false, Code: code, Text: text}
}
