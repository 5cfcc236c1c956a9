package utils

import (
	"log/slog"
	"os"
	"strings"
)

var (
	InfoLog  *slog.Logger
	ErrorLog *slog.Logger
)

// Los paquetes del núcleo se usan también desde los tests, sin main que
// configure el logger, así que arrancamos con un nivel conservador.
func init() {
	InicializarLogger("warn", "nachos")
}

// ParsearNivel traduce el LOG_LEVEL de la configuración a un slog.Level
func ParsearNivel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InicializarLogger configura los loggers globales
func InicializarLogger(logLevel string, moduleName string) {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParsearNivel(logLevel),
	})

	logger := slog.New(handler).With("modulo", moduleName)

	InfoLog = logger
	ErrorLog = logger
}
