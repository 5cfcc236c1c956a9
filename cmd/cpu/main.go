package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

var (
	identificador string
	memoriaClient *utils.HTTPClient
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Error: Uso: ./cpu [programa_noff] [script] [archivo_config_opcional]")
		os.Exit(1)
	}

	programa, script := os.Args[1], os.Args[2]
	identificador = strings.TrimSuffix(filepath.Base(script), filepath.Ext(script))

	inicializarModulo()
	utils.InfoLog.Info("CPU iniciada correctamente", "programa", programa, "script", script)

	instrucciones, err := leerScript(script)
	if err != nil {
		utils.ErrorLog.Error("No se pudo leer el script", "script", script, "error", err)
		os.Exit(1)
	}

	proceso, err := cargarProceso(programa)
	if err != nil {
		utils.ErrorLog.Error("No se pudo crear el proceso", "programa", programa, "error", err)
		os.Exit(1)
	}

	motivo, err := proceso.Ejecutar(instrucciones)
	if err != nil {
		utils.ErrorLog.Error("Error ejecutando script", "pid", proceso.PID, "error", err)
		os.Exit(1)
	}
	utils.InfoLog.Info("Script terminado", "pid", proceso.PID, "motivo", motivo, "instrucciones", proceso.Ejecutadas)
}

func inicializarModulo() {
	// Determinar archivo de configuración
	var rutaConfig string
	if len(os.Args) >= 4 {
		rutaConfig = os.Args[3]
	} else {
		rutaConfig = filepath.Join("configs", "cpu-config.json")
	}

	// Verificar que el archivo existe
	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Printf("Error: El archivo de configuración '%s' no existe\n", rutaConfig)
		os.Exit(1)
	}

	loggerName := fmt.Sprintf("CPU-%s", identificador)
	utils.InicializarLogger("INFO", loggerName)

	// Cargar configuración
	config = utils.CargarConfiguracion[CPUConfig](rutaConfig)
	if config.MaxInstrucciones <= 0 {
		config.MaxInstrucciones = 1000
	}

	// Actualizar nivel de log
	utils.InicializarLogger(config.LogLevel, loggerName)
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", rutaConfig)

	memoriaClient = utils.NewHTTPClient(config.IPMemory, config.PortMemory, "CPU->Memoria")
	if err := memoriaClient.VerificarConexion(); err != nil {
		utils.ErrorLog.Error("Memoria no disponible", "error", err)
		os.Exit(1)
	}
}
