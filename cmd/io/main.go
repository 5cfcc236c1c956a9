package main

import (
	"fmt"
	"os"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

var memoriaClient *utils.HTTPClient

func main() {
	// Verificar argumentos mínimos
	if len(os.Args) < 3 {
		fmt.Println("Uso: ./io <ruta_configuracion> <comando> [argumentos]")
		fmt.Println("Comandos: cp <archivo_host> <nombre> | rm <nombre> | ls | fs | libre")
		fmt.Println("Ejemplo: ./io configs/io-config.json cp programas/halt.noff halt")
		os.Exit(1)
	}

	rutaConfig := os.Args[1]

	// Verificar que el archivo de configuración existe
	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Printf("Error: El archivo de configuración '%s' no existe\n", rutaConfig)
		os.Exit(1)
	}

	inicializarModulo(rutaConfig)

	if err := ejecutarComando(os.Stdout, os.Args[2], os.Args[3:]); err != nil {
		utils.ErrorLog.Error("Error ejecutando comando", "comando", os.Args[2], "error", err)
		os.Exit(1)
	}
}

func inicializarModulo(rutaConfig string) {
	utils.InicializarLogger("INFO", "IO")

	// Cargar configuración
	config = utils.CargarConfiguracion[IOConfig](rutaConfig)

	// Actualizar nivel de log
	utils.InicializarLogger(config.LogLevel, "IO")

	utils.InfoLog.Info("Módulo IO inicializado",
		"config_path", rutaConfig,
		"ip_memoria", config.IPMemory,
		"puerto_memoria", config.PortMemory,
		"nivel_log", config.LogLevel)

	memoriaClient = utils.NewHTTPClient(config.IPMemory, config.PortMemory, "IO->Memoria")
}
