package main

import (
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

func respuestaError(err error) (interface{}, error) {
	return map[string]interface{}{"error": err.Error()}, nil
}

func respuestaOK(campos map[string]interface{}) (interface{}, error) {
	respuesta := map[string]interface{}{"status": "OK"}
	for k, v := range campos {
		respuesta[k] = v
	}
	return respuesta, nil
}

// enteros extrae todos los campos pedidos o devuelve cuál falta
func enteros(msg *utils.Mensaje, campos ...string) ([]int, error) {
	valores := make([]int, len(campos))
	for i, campo := range campos {
		valor, ok := utils.ExtraerEntero(msg, campo)
		if !ok {
			utils.ErrorLog.Error("Campo no proporcionado", "campo", campo, "datos", msg.Datos)
			return nil, fmt.Errorf("%s no proporcionado o formato incorrecto", campo)
		}
		valores[i] = valor
	}
	return valores, nil
}

func texto(msg *utils.Mensaje, campo string) (string, error) {
	valor, ok := utils.ExtraerTexto(msg, campo)
	if !ok {
		utils.ErrorLog.Error("Campo no proporcionado", "campo", campo, "datos", msg.Datos)
		return "", fmt.Errorf("%s no proporcionado o formato incorrecto", campo)
	}
	return valor, nil
}

func handlerHandshake(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Handshake recibido", "origen", msg.Origen)

	return respuestaOK(map[string]interface{}{
		"tam_pagina": config.PageSize,
		"marcos":     config.NumFrames,
		"tam_sector": config.SectorSize,
		"tam_pila":   config.UserStackSize,
	})
}

func handlerOperacion(msg *utils.Mensaje) (interface{}, error) {
	return utils.HandlerGenerico(msg, 0, func(msg *utils.Mensaje) (interface{}, error) {
		return respuestaOK(map[string]interface{}{
			"procesos": sistema.Procesos(),
			"actual":   sistema.Actual(),
		})
	})
}

func handlerSyscall(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "numero")
	if err != nil {
		return respuestaError(err)
	}

	var args kernel.Argumentos
	for i := range args {
		args[i], _ = utils.ExtraerEntero(msg, fmt.Sprintf("r%d", i+4))
	}

	resultado, err := sistema.HandleSystemCall(v[0], v[1], args)
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"resultado": resultado})
}

func handlerHalt(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Apagado solicitado", "origen", msg.Origen)
	if err := sistema.Halt(); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

// === Sistema de archivos ===

func handlerCrearArchivo(msg *utils.Mensaje) (interface{}, error) {
	nombre, err := texto(msg, "nombre")
	if err != nil {
		return respuestaError(err)
	}
	tamanio, _ := utils.ExtraerEntero(msg, "tamanio")

	if err := sistema.Create(nombre, tamanio); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

func handlerAbrirArchivo(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}
	nombre, err := texto(msg, "nombre")
	if err != nil {
		return respuestaError(err)
	}

	fd, err := sistema.Open(v[0], nombre)
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"fd": fd})
}

func handlerLeerArchivo(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "fd", "cantidad", "posicion")
	if err != nil {
		return respuestaError(err)
	}

	datos, err := sistema.ReadAt(v[0], v[1], v[2], v[3])
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"datos": datos})
}

func handlerEscribirArchivo(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "fd", "posicion")
	if err != nil {
		return respuestaError(err)
	}
	datos, ok := utils.ExtraerBytes(msg, "datos")
	if !ok {
		return respuestaError(fmt.Errorf("datos no proporcionados o formato incorrecto"))
	}

	escritos, err := sistema.WriteAt(v[0], v[1], datos, v[2])
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"escritos": escritos})
}

func handlerCerrarArchivo(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "fd")
	if err != nil {
		return respuestaError(err)
	}
	if err := sistema.Close(v[0], v[1]); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

func handlerBorrarArchivo(msg *utils.Mensaje) (interface{}, error) {
	nombre, err := texto(msg, "nombre")
	if err != nil {
		return respuestaError(err)
	}
	if err := sistema.Remove(nombre); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

func handlerImprimirFS(msg *utils.Mensaje) (interface{}, error) {
	return respuestaOK(map[string]interface{}{"fs": sistema.ImprimirFS()})
}

func handlerListarArchivos(msg *utils.Mensaje) (interface{}, error) {
	nombres, err := sistema.List()
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"archivos": nombres})
}

func handlerCopiarArchivo(msg *utils.Mensaje) (interface{}, error) {
	nombre, err := texto(msg, "nombre")
	if err != nil {
		return respuestaError(err)
	}

	if contenido, ok := utils.ExtraerBytes(msg, "contenido"); ok {
		err = sistema.CopiarBytes(contenido, nombre)
	} else {
		var ruta string
		if ruta, err = texto(msg, "ruta"); err != nil {
			return respuestaError(err)
		}
		err = sistema.CopiarDesdeHost(ruta, nombre)
	}
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

// === Memoria virtual ===

func handlerFalloPagina(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "direccion")
	if err != nil {
		return respuestaError(err)
	}
	if err := sistema.PageFault(v[0], v[1]); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

func handlerLeerMemoria(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "direccion", "tamanio")
	if err != nil {
		return respuestaError(err)
	}

	datos, err := sistema.LeerMemoria(v[0], v[1], v[2])
	if err != nil {
		return respuestaError(err)
	}

	// Log obligatorio del enunciado
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Lectura - Dir. Virtual: %d - Tamaño: %d", v[0], v[1], v[2]))
	return respuestaOK(map[string]interface{}{"datos": datos})
}

func handlerEscribirMemoria(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid", "direccion")
	if err != nil {
		return respuestaError(err)
	}
	datos, ok := utils.ExtraerBytes(msg, "datos")
	if !ok {
		return respuestaError(fmt.Errorf("datos no proporcionados o formato incorrecto"))
	}

	if err := sistema.EscribirMemoria(v[0], v[1], datos); err != nil {
		return respuestaError(err)
	}

	// Log obligatorio del enunciado
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Escritura - Dir. Virtual: %d - Tamaño: %d", v[0], v[1], len(datos)))
	return respuestaOK(nil)
}

func handlerMemoryDump(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}

	ruta, err := sistema.Dump(v[0])
	if err != nil {
		utils.ErrorLog.Error("Error al crear memory dump", "pid", v[0], "error", err)
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"archivo": ruta})
}

func handlerMetricas(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}

	metricas, err := sistema.Metricas(v[0])
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"metricas": metricas})
}

func handlerEspacioLibre(msg *utils.Mensaje) (interface{}, error) {
	marcos := sistema.MarcosLibres()
	sectores := sistema.EspacioLibre()

	utils.InfoLog.Info("Espacio libre consultado", "marcos_libres", marcos, "sectores_libres", sectores)
	return respuestaOK(map[string]interface{}{
		"marcos_libres":   marcos,
		"sectores_libres": sectores,
		"espacio_libre":   marcos * config.PageSize,
	})
}

// === Procesos ===

func handlerEjecutarProceso(msg *utils.Mensaje) (interface{}, error) {
	programa, err := texto(msg, "programa")
	if err != nil {
		return respuestaError(err)
	}

	pid, err := sistema.Exec(programa)
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"pid": pid})
}

func handlerForkProceso(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}

	hijo, err := sistema.Fork(v[0])
	if err != nil {
		return respuestaError(err)
	}
	return respuestaOK(map[string]interface{}{"pid": hijo})
}

func handlerFinalizarProceso(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}
	codigo, _ := utils.ExtraerEntero(msg, "codigo")

	if err := sistema.Exit(v[0], codigo); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}

func handlerCambiarProceso(msg *utils.Mensaje) (interface{}, error) {
	v, err := enteros(msg, "pid")
	if err != nil {
		return respuestaError(err)
	}
	if err := sistema.Switch(v[0]); err != nil {
		return respuestaError(err)
	}
	return respuestaOK(nil)
}
