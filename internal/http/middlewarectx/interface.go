package middlewarectx

import (
	"context"
	"net/http"

	"github.com/rbenzing/slimbooks-app/internal/session"
)

// Sessions описывает интерфейс хранилища сессий, используемый middleware.
type Sessions interface {
	Get(ctx context.Context, sid string) (*session.Data, bool, error)
	SetFlashError(ctx context.Context, sid, msg string) error
	ReadCookie(r *http.Request) (string, bool)
}
