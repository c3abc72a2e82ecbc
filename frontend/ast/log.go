package ast

import (
	"context"
	"log/slog"
	"strings"
)

// Slog wraps an Expr as a slog.LogValuer so that the expression is only
// rendered when the record is actually written
func Slog(expr Expr) slog.LogValuer {
	return exprLogValuer{expr}
}

type exprLogValuer struct{ Expr }

func (l exprLogValuer) LogValue() slog.Value {
	return slog.StringValue(ExprString(l.Expr))
}

type exprsLogValuer []Expr

func (l exprsLogValuer) LogValue() slog.Value {
	strs := make([]string, len(l))
	for i, e := range l {
		strs[i] = ExprString(e)
	}
	return slog.StringValue("[" + strings.Join(strs, ", ") + "]")
}

// ExprLogger wraps underlying so that Expr and []Expr attributes are lazily printed as source
func ExprLogger(underlying *slog.Logger) *slog.Logger {
	return slog.New(&exprLogHandler{underlying: underlying.Handler()})
}

type exprLogHandler struct {
	underlying slog.Handler
}

func lazyAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	switch v := attr.Value.Any().(type) {
	case Expr:
		return slog.Any(attr.Key, Slog(v))
	case []Expr:
		return slog.Any(attr.Key, exprsLogValuer(v))
	}
	return attr
}

func (l *exprLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *exprLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(lazyAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *exprLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = lazyAttr(attr)
	}
	return &exprLogHandler{underlying: l.underlying.WithAttrs(wrapped)}
}

func (l *exprLogHandler) WithGroup(name string) slog.Handler {
	return &exprLogHandler{underlying: l.underlying.WithGroup(name)}
}
