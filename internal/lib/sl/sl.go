// Package sl содержит мелкие помощники для slog.
package sl

import "log/slog"

// Err кладет ошибку в атрибут с ключом "error", чтобы поле называлось
// одинаково во всех сообщениях лога.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
