package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
)

// IdentityResolver extracts the caller's user ID from a request. It is the
// single place that decides who the caller is.
type IdentityResolver interface {
	Resolve(r *http.Request) (int64, error)
}

// HeaderIdentity trusts a numeric user ID sent in a request header. It does
// not authenticate the caller.
type HeaderIdentity struct {
	Header string
}

func NewHeaderIdentity() HeaderIdentity {
	return HeaderIdentity{Header: common.UserIDHeaderName}
}

func (h HeaderIdentity) Resolve(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(h.Header))
	if raw == "" {
		return 0, common.ErrInvalidIdentityClaim
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, common.ErrInvalidIdentityClaim
	}
	return id, nil
}

type ctxKey string

const (
	callerIDKey  ctxKey = "callerID"
	requestIDKey ctxKey = "requestID"
)

func withCallerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, callerIDKey, id)
}

func callerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(callerIDKey).(int64)
	return id, ok
}
