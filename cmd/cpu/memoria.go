package main

import (
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

func escribirEnMemoria(pid int, direccion int, datos []byte) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeEscribirMemoria, "", map[string]interface{}{
		"pid":       pid,
		"direccion": direccion,
		"datos":     datos,
	})
	if err != nil {
		return fmt.Errorf("error escribiendo en memoria: %w", err)
	}
	utils.InfoLog.Info(fmt.Sprintf("PID: %d - Acción: ESCRIBIR - Dirección Virtual: %d - Valor: %q", pid, direccion, datos))
	return nil
}

func leerDeMemoria(pid int, direccion int, tamanio int) ([]byte, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeLeerMemoria, "", map[string]interface{}{
		"pid":       pid,
		"direccion": direccion,
		"tamanio":   tamanio,
	})
	if err != nil {
		return nil, fmt.Errorf("error leyendo de memoria: %w", err)
	}
	datos, ok := utils.ExtraerBytes(&utils.Mensaje{Datos: resp}, "datos")
	if !ok {
		return nil, fmt.Errorf("respuesta sin datos: %v", resp)
	}
	utils.InfoLog.Info(fmt.Sprintf("PID: %d - Acción: LEER - Dirección Virtual: %d - Valor: %q", pid, direccion, datos))
	return datos, nil
}

// llamarSistema hace la syscall con los argumentos en r4..r7 y devuelve r2
func llamarSistema(pid int, numero int, args kernel.Argumentos) (int, error) {
	datos := map[string]interface{}{
		"pid":    pid,
		"numero": numero,
	}
	for i, arg := range args {
		datos[fmt.Sprintf("r%d", i+4)] = arg
	}

	resp, err := memoriaClient.EnviarHTTPOperacion("syscall", datos)
	if err != nil {
		return -1, err
	}
	resultado, _ := resp["resultado"].(float64)
	return int(resultado), nil
}

func copiarPrograma(nombre string, exe []byte) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeCopiarArchivo, "", map[string]interface{}{
		"nombre":    nombre,
		"contenido": exe,
	})
	return err
}

func ejecutarPrograma(nombre string) (int, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeEjecutarProceso, "", map[string]interface{}{"programa": nombre})
	if err != nil {
		return -1, err
	}
	pid, ok := resp["pid"].(float64)
	if !ok {
		return -1, fmt.Errorf("respuesta sin pid: %v", resp)
	}
	return int(pid), nil
}

func pedirDump(pid int) (string, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeMemoryDump, "", map[string]interface{}{"pid": pid})
	if err != nil {
		return "", err
	}
	archivo, _ := resp["archivo"].(string)
	return archivo, nil
}
