package main

import (
	"encoding/json"
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/carga"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

func entero(resp map[string]interface{}, campo string) (int, error) {
	valor, ok := resp[campo].(float64)
	if !ok {
		return 0, fmt.Errorf("respuesta sin %s: %v", campo, resp)
	}
	return int(valor), nil
}

func handshake() (int, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeHandshake, "handshake", map[string]interface{}{"modulo": "Kernel"})
	if err != nil {
		return 0, fmt.Errorf("error en handshake con memoria: %w", err)
	}
	return entero(resp, "tam_pagina")
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
		return -1, fmt.Errorf("error ejecutando %s: %w", nombre, err)
	}
	return entero(resp, "pid")
}

func cambiarProceso(pid int) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeCambiarProceso, "", map[string]interface{}{"pid": pid})
	return err
}

func finalizarProceso(pid int, codigo int) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeFinalizarProceso, "", map[string]interface{}{
		"pid":    pid,
		"codigo": codigo,
	})
	return err
}

// accederMemoria reproduce una referencia de la traza. Las escrituras dejan
// el pid en el byte apuntado.
func accederMemoria(pid int, acceso carga.Acceso) error {
	if acceso.Escritura {
		_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeEscribirMemoria, "", map[string]interface{}{
			"pid":       pid,
			"direccion": acceso.VAddr,
			"datos":     []byte{byte(pid)},
		})
		return err
	}

	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeLeerMemoria, "", map[string]interface{}{
		"pid":       pid,
		"direccion": acceso.VAddr,
		"tamanio":   1,
	})
	return err
}

func pedirMetricas(pid int) (memoria.MetricasProceso, error) {
	var metricas memoria.MetricasProceso
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeMetricas, "", map[string]interface{}{"pid": pid})
	if err != nil {
		return metricas, err
	}

	// viene como mapa genérico; se vuelve a pasar por JSON para tiparlo
	crudo, err := json.Marshal(resp["metricas"])
	if err != nil {
		return metricas, err
	}
	err = json.Unmarshal(crudo, &metricas)
	return metricas, err
}

func pedirDump(pid int) (string, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeMemoryDump, "", map[string]interface{}{"pid": pid})
	if err != nil {
		return "", err
	}
	archivo, _ := resp["archivo"].(string)
	return archivo, nil
}

// === Archivos ===

func crearArchivo(nombre string, tamanio int) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeCrearArchivo, "", map[string]interface{}{
		"nombre":  nombre,
		"tamanio": tamanio,
	})
	return err
}

func abrirArchivo(pid int, nombre string) (int, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeAbrirArchivo, "", map[string]interface{}{
		"pid":    pid,
		"nombre": nombre,
	})
	if err != nil {
		return -1, err
	}
	return entero(resp, "fd")
}

func escribirArchivo(pid int, fd int, posicion int, datos []byte) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeEscribirArchivo, "", map[string]interface{}{
		"pid":      pid,
		"fd":       fd,
		"posicion": posicion,
		"datos":    datos,
	})
	return err
}

func leerArchivo(pid int, fd int, posicion int, cantidad int) ([]byte, error) {
	resp, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeLeerArchivo, "", map[string]interface{}{
		"pid":      pid,
		"fd":       fd,
		"posicion": posicion,
		"cantidad": cantidad,
	})
	if err != nil {
		return nil, err
	}
	datos, ok := utils.ExtraerBytes(&utils.Mensaje{Datos: resp}, "datos")
	if !ok {
		return nil, fmt.Errorf("respuesta sin datos: %v", resp)
	}
	return datos, nil
}

func cerrarArchivo(pid int, fd int) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeCerrarArchivo, "", map[string]interface{}{
		"pid": pid,
		"fd":  fd,
	})
	return err
}

func borrarArchivo(nombre string) error {
	_, err := memoriaClient.EnviarHTTPMensaje(utils.MensajeBorrarArchivo, "", map[string]interface{}{"nombre": nombre})
	return err
}
