package auth

import "context"

type ctxKey int

const (
	subjectKey ctxKey = iota + 1
	tokenKey
)

// SubjectFromCtx returns the authenticated username, if the admission
// middleware established one.
func SubjectFromCtx(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

// TokenFromCtx returns the raw bearer token the identity came from;
// logout needs it to blacklist the exact credential.
func TokenFromCtx(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}

func withIdentity(ctx context.Context, subject, token string) context.Context {
	ctx = context.WithValue(ctx, subjectKey, subject)
	return context.WithValue(ctx, tokenKey, token)
}
