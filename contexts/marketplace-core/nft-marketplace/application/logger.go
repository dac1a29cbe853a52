package application

import "log/slog"

const ModuleName = "marketplace-core/nft-marketplace"

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
