package main

import (
	"net/http/httptest"
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

func nuevoServidorDePrueba(t *testing.T) *utils.HTTPClient {
	cfg := kernel.ConfigPorDefecto()
	cfg.NumFrames = 4
	cfg.UserStackSize = 256
	cfg.DumpPath = t.TempDir()
	config = &cfg

	var err error
	sistema, err = kernel.Iniciar(cfg)
	assert.Equal(t, err, nil)

	m := utils.NuevoModulo("Memoria", "")
	registrarHandlers(m)
	srv := httptest.NewServer(m.PrepararServidor(cfg.IPMemoria, cfg.PuertoMemoria).Handler())
	t.Cleanup(srv.Close)

	return utils.NewHTTPClientURL(srv.URL, "Test")
}

func TestHandshake(t *testing.T) {
	cliente := nuevoServidorDePrueba(t)

	resp, err := cliente.EnviarHTTPMensaje(utils.MensajeHandshake, "handshake", nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, resp["tam_pagina"], float64(128))
	assert.Equal(t, resp["marcos"], float64(4))
}

func TestArchivosPorHTTP(t *testing.T) {
	cliente := nuevoServidorDePrueba(t)

	_, err := cliente.EnviarHTTPMensaje(utils.MensajeCrearArchivo, "", map[string]interface{}{"nombre": "datos"})
	assert.Equal(t, err, nil)
	_, err = cliente.EnviarHTTPMensaje(utils.MensajeCrearArchivo, "", map[string]interface{}{"nombre": "datos"})
	assert.Equal(t, err != nil, true, "nombre repetido")

	exe := memoria.ConstruirNoff(make([]byte, 128), nil, 0)
	_, err = cliente.EnviarHTTPMensaje(utils.MensajeCopiarArchivo, "", map[string]interface{}{
		"nombre": "prog", "contenido": exe,
	})
	assert.Equal(t, err, nil)
	resp, err := cliente.EnviarHTTPMensaje(utils.MensajeEjecutarProceso, "", map[string]interface{}{"programa": "prog"})
	assert.Equal(t, err, nil)
	pid := int(resp["pid"].(float64))

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeAbrirArchivo, "", map[string]interface{}{"pid": pid, "nombre": "datos"})
	assert.Equal(t, err, nil)
	fd := int(resp["fd"].(float64))

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeEscribirArchivo, "", map[string]interface{}{
		"pid": pid, "fd": fd, "posicion": 10, "datos": []byte("hola"),
	})
	assert.Equal(t, err, nil)
	assert.Equal(t, resp["escritos"], float64(4))

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeLeerArchivo, "", map[string]interface{}{
		"pid": pid, "fd": fd, "posicion": 8, "cantidad": 6,
	})
	assert.Equal(t, err, nil)
	msg := &utils.Mensaje{Datos: resp}
	datos, ok := utils.ExtraerBytes(msg, "datos")
	assert.Equal(t, ok, true)
	assert.Equal(t, datos, []byte("\x00\x00hola"))

	_, err = cliente.EnviarHTTPMensaje(utils.MensajeCerrarArchivo, "", map[string]interface{}{"pid": pid, "fd": fd})
	assert.Equal(t, err, nil)

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeListarArchivos, "", nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, len(resp["archivos"].([]interface{})), 3)

	_, err = cliente.EnviarHTTPMensaje(utils.MensajeBorrarArchivo, "", map[string]interface{}{"nombre": "datos"})
	assert.Equal(t, err, nil)
	_, err = cliente.EnviarHTTPMensaje(utils.MensajeBorrarArchivo, "", map[string]interface{}{"nombre": "datos"})
	assert.Equal(t, err != nil, true)
}

func TestMemoriaPorHTTP(t *testing.T) {
	cliente := nuevoServidorDePrueba(t)

	exe := memoria.ConstruirNoff([]byte("CODIGO"), nil, 0)
	_, err := cliente.EnviarHTTPMensaje(utils.MensajeCopiarArchivo, "", map[string]interface{}{
		"nombre": "prog", "contenido": exe,
	})
	assert.Equal(t, err, nil)
	resp, err := cliente.EnviarHTTPMensaje(utils.MensajeEjecutarProceso, "", map[string]interface{}{"programa": "prog"})
	assert.Equal(t, err, nil)
	pid := int(resp["pid"].(float64))

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeLeerMemoria, "", map[string]interface{}{
		"pid": pid, "direccion": 0, "tamanio": 6,
	})
	assert.Equal(t, err, nil)
	datos, _ := utils.ExtraerBytes(&utils.Mensaje{Datos: resp}, "datos")
	assert.Equal(t, string(datos), "CODIGO")

	_, err = cliente.EnviarHTTPMensaje(utils.MensajeEscribirMemoria, "", map[string]interface{}{
		"pid": pid, "direccion": 200, "datos": []byte{1, 2, 3},
	})
	assert.Equal(t, err, nil)

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeMetricas, "", map[string]interface{}{"pid": pid})
	assert.Equal(t, err, nil)
	metricas := resp["metricas"].(map[string]interface{})
	assert.Equal(t, metricas["fallos_pagina"], float64(2))

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeEspacioLibre, "", nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, resp["marcos_libres"], float64(2))

	_, err = cliente.EnviarHTTPMensaje(utils.MensajeLeerMemoria, "", map[string]interface{}{"pid": pid})
	assert.Equal(t, err != nil, true, "faltan campos")

	_, err = cliente.EnviarHTTPMensaje(utils.MensajeFinalizarProceso, "", map[string]interface{}{"pid": pid, "codigo": 0})
	assert.Equal(t, err, nil)
	resp, err = cliente.EnviarHTTPOperacion("estado", nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, resp["actual"], float64(-1))
}

func TestSyscallPorHTTP(t *testing.T) {
	cliente := nuevoServidorDePrueba(t)

	codigo := make([]byte, 64)
	copy(codigo[16:], "nuevo\x00")
	_, err := cliente.EnviarHTTPMensaje(utils.MensajeCopiarArchivo, "", map[string]interface{}{
		"nombre": "prog", "contenido": memoria.ConstruirNoff(codigo, nil, 0),
	})
	assert.Equal(t, err, nil)
	resp, err := cliente.EnviarHTTPMensaje(utils.MensajeEjecutarProceso, "", map[string]interface{}{"programa": "prog"})
	assert.Equal(t, err, nil)
	pid := int(resp["pid"].(float64))

	_, err = cliente.EnviarHTTPOperacion("syscall", map[string]interface{}{
		"pid": pid, "numero": kernel.SyscallCreate, "r4": 16,
	})
	assert.Equal(t, err, nil)

	resp, err = cliente.EnviarHTTPMensaje(utils.MensajeListarArchivos, "", nil)
	assert.Equal(t, err, nil)
	assert.Equal(t, resp["archivos"], []interface{}{"prog", "swap1", "nuevo"})

	_, err = cliente.EnviarHTTPOperacion("syscall", map[string]interface{}{"pid": pid, "numero": 99})
	assert.Equal(t, err != nil, true)
}
