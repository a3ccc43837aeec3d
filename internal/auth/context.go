package auth

import (
	"context"

	"github.com/Joseda-hg/taskboard/internal/model"
)

type ctxKey int

const identityKey ctxKey = 1

func NewContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func FromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	if !ok || identity.UserID == 0 {
		return model.Identity{}, false
	}
	return identity, true
}
