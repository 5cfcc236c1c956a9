package utils

import (
	"encoding/base64"
	"time"
)

// AplicarRetardo aplica un retardo simulado y lo registra
func AplicarRetardo(operacion string, duracionMs int) {
	if duracionMs <= 0 {
		return
	}
	InfoLog.Debug("Aplicando retardo", "operación", operacion, "duración_ms", duracionMs)
	time.Sleep(time.Duration(duracionMs) * time.Millisecond)
	InfoLog.Debug("Retardo completado", "operación", operacion)
}

// ExtraerEntero obtiene un campo numérico de los datos de un mensaje.
// JSON decodifica los números como float64.
func ExtraerEntero(msg *Mensaje, campo string) (int, bool) {
	if datosMap, ok := msg.Datos.(map[string]interface{}); ok {
		if valor, ok := datosMap[campo].(float64); ok {
			return int(valor), true
		}
	}
	return 0, false
}

// ExtraerTexto obtiene un campo de texto de los datos de un mensaje
func ExtraerTexto(msg *Mensaje, campo string) (string, bool) {
	if datosMap, ok := msg.Datos.(map[string]interface{}); ok {
		if valor, ok := datosMap[campo].(string); ok {
			return valor, true
		}
	}
	return "", false
}

// ExtraerBytes obtiene un campo binario, que viaja en base64 como lo codifica
// encoding/json para []byte
func ExtraerBytes(msg *Mensaje, campo string) ([]byte, bool) {
	texto, ok := ExtraerTexto(msg, campo)
	if !ok {
		return nil, false
	}
	datos, err := base64.StdEncoding.DecodeString(texto)
	if err != nil {
		return nil, false
	}
	return datos, true
}

// ObtenerTipoOperacion obtiene el tipo de operación del mensaje
func ObtenerTipoOperacion(msg *Mensaje, valorPorDefecto string) string {
	if tipo, ok := ExtraerTexto(msg, "tipo"); ok {
		return tipo
	}
	return valorPorDefecto
}

// HandlerGenerico registra la operación, aplica el retardo y delega en el procesador
func HandlerGenerico(msg *Mensaje, retardo int, procesador func(msg *Mensaje) (interface{}, error)) (interface{}, error) {
	InfoLog.Info("Operación recibida", "origen", msg.Origen, "tipo", msg.Tipo, "operacion", msg.Operacion)

	AplicarRetardo("procesamiento", retardo)

	return procesador(msg)
}
