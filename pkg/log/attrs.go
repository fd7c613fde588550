package log

import (
	"log/slog"
	"strconv"
)

func WorkflowID[T ~int64](id T) slog.Attr {
	return slog.String("workflow_id", strconv.FormatInt(int64(id), 10))
}

func StateID[T ~int64](id T) slog.Attr {
	return slog.String("state_id", strconv.FormatInt(int64(id), 10))
}

func UserID[T ~int64](id T) slog.Attr {
	return slog.String("user_id", strconv.FormatInt(int64(id), 10))
}

func Username(name string) slog.Attr {
	return slog.String("username", name)
}

func Permission[T ~string](perm T) slog.Attr {
	return slog.String("permission", string(perm))
}

func App(name string) slog.Attr {
	return slog.String("app", name)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
