package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

var (
	modulo  *utils.Modulo
	sistema *kernel.Kernel
)

func main() {
	// Verificar argumentos
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/memoria-config.json\n", os.Args[0])
		os.Exit(1)
	}

	// Inicializar logger ANTES de usarlo
	utils.InicializarLogger("INFO", "Memoria")
	utils.InfoLog.Info("Iniciando módulo Memoria")

	inicializarModulo(os.Args[1])
	modulo.IniciarServidor(config.IPMemoria, config.PuertoMemoria)
	utils.InfoLog.Info("Memoria inicializada correctamente")

	// Al cortar el proceso se guarda el file system
	senales := make(chan os.Signal, 1)
	signal.Notify(senales, os.Interrupt, syscall.SIGTERM)
	<-senales

	if err := sistema.Halt(); err != nil {
		utils.ErrorLog.Error("Error deteniendo el sistema", "error", err)
		os.Exit(1)
	}
}

func inicializarModulo(rutaConfig string) {
	// Verificar que el archivo existe
	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: El archivo de configuración no existe: %s\n", rutaConfig)
		os.Exit(1)
	}

	modulo = utils.NuevoModulo("Memoria", rutaConfig)
	config = cargarConfig(rutaConfig)

	// Actualizar logger con configuración del archivo
	utils.InicializarLogger(config.LogLevel, "Memoria")
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", rutaConfig)

	var err error
	sistema, err = kernel.Iniciar(*config)
	if err != nil {
		utils.ErrorLog.Error("No se pudo iniciar el kernel", "error", err)
		os.Exit(1)
	}

	registrarHandlers(modulo)
}

func registrarHandlers(m *utils.Modulo) {
	m.RegistrarHandler(strconv.Itoa(utils.MensajeHandshake), "handshake", handlerHandshake)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeOperacion), "syscall", handlerSyscall)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeOperacion), "halt", handlerHalt)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeOperacion), "imprimir_fs", handlerImprimirFS)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeOperacion), "default", handlerOperacion)

	m.RegistrarHandler(strconv.Itoa(utils.MensajeCrearArchivo), "default", handlerCrearArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeAbrirArchivo), "default", handlerAbrirArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeLeerArchivo), "default", handlerLeerArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEscribirArchivo), "default", handlerEscribirArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeCerrarArchivo), "default", handlerCerrarArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeBorrarArchivo), "default", handlerBorrarArchivo)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeListarArchivos), "default", handlerListarArchivos)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeCopiarArchivo), "default", handlerCopiarArchivo)

	m.RegistrarHandler(strconv.Itoa(utils.MensajeFalloPagina), "default", handlerFalloPagina)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeLeerMemoria), "default", handlerLeerMemoria)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEscribirMemoria), "default", handlerEscribirMemoria)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeMemoryDump), "default", handlerMemoryDump)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeMetricas), "default", handlerMetricas)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEspacioLibre), "default", handlerEspacioLibre)

	m.RegistrarHandler(strconv.Itoa(utils.MensajeEjecutarProceso), "default", handlerEjecutarProceso)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeForkProceso), "default", handlerForkProceso)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeFinalizarProceso), "default", handlerFinalizarProceso)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeCambiarProceso), "default", handlerCambiarProceso)

	utils.InfoLog.Info("Handlers registrados correctamente")
}
