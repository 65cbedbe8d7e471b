package httputil

// NoticeLevel is the severity of a transient UI notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the message shown to the user after an operation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func SuccessNotice(msg string) Notice { return Notice{Level: NoticeSuccess, Message: msg} }
func WarningNotice(msg string) Notice { return Notice{Level: NoticeWarning, Message: msg} }
func ErrorNotice(msg string) Notice   { return Notice{Level: NoticeError, Message: msg} }
