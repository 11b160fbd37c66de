package appointments

import "context"

type sessionIDKey struct{}

// ContextWithSessionID tags ctx with the chat session that produced a request.
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext returns the session set by ContextWithSessionID, or "".
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

type localeKey struct{}

// ContextWithLocale tags ctx with the session's language code. The code
// comes from the chat session, not from the patient's answers.
func ContextWithLocale(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, localeKey{}, code)
}

// LocaleFromContext returns the code set by ContextWithLocale, or "".
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	code, _ := ctx.Value(localeKey{}).(string)
	return code
}
