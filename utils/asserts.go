package utils

import "fmt"

// Assert corta la simulación cuando se viola un invariante interno.
// Es para errores de programación (p. ej. marcar un sector fuera de rango),
// no para fallas que el llamador pueda reportar al usuario.
func Assert(cond bool, format string, a ...interface{}) {
	if !cond {
		msg := fmt.Sprintf(format, a...)
		ErrorLog.Error("Invariante violado", "detalle", msg)
		panic("[ERROR] Assert: " + msg)
	}
}
