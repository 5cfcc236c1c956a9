package main

import (
	"fmt"
	"os"

	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

const nombrePrograma = "carga"

func main() {
	// Inicializar loggers
	utils.InicializarLogger("INFO", "kernel")

	utils.InfoLog.Info("Kernel iniciando", "args", os.Args)

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion> [programa_noff]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/kernel-config-zipf.json\n", os.Args[0])
		os.Exit(1)
	}

	configPath := os.Args[1]
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		utils.ErrorLog.Error("El archivo de configuración no existe", "archivo", configPath)
		os.Exit(1)
	}

	if err := inicializarKernel(configPath); err != nil {
		utils.ErrorLog.Error("Error durante la inicialización del Kernel", "error", err)
		os.Exit(1)
	}
	if len(os.Args) > 2 {
		kernelConfig.Programa = os.Args[2]
	}

	if err := cargarPrograma(); err != nil {
		utils.ErrorLog.Error("No se pudo cargar el programa", "error", err)
		os.Exit(1)
	}

	if kernelConfig.PruebaFS {
		if err := correrPruebaFS(); err != nil {
			utils.ErrorLog.Error("Falló la prueba de file system", "error", err)
			os.Exit(1)
		}
	}

	terminados, err := NuevoPlanificador(kernelConfig, nombrePrograma).Ejecutar()
	if err != nil {
		utils.ErrorLog.Error("Error ejecutando la carga", "error", err)
		os.Exit(1)
	}

	total := Totales(terminados)
	fmt.Printf("Procesos: %d - Fallos: %d - Desalojos: %d - Bajadas a SWAP: %d\n",
		len(terminados), total.FallosPagina, total.Desalojos, total.BajadasSwap)
	utils.InfoLog.Info("Kernel finalizado", "procesos", len(terminados))
}

// cargarPrograma copia al disco simulado el ejecutable del host o, si no hay,
// uno generado con tantas páginas de código como pide la carga
func cargarPrograma() error {
	var exe []byte
	if kernelConfig.Programa != "" {
		var err error
		if exe, err = os.ReadFile(kernelConfig.Programa); err != nil {
			return fmt.Errorf("error leyendo %s: %w", kernelConfig.Programa, err)
		}
	} else {
		exe = generarPrograma(kernelConfig.Carga.Paginas, tamPagina)
	}

	utils.InfoLog.Info("Copiando programa", "nombre", nombrePrograma, "bytes", len(exe))
	return copiarPrograma(nombrePrograma, exe)
}

// generarPrograma arma un NOFF cuyo código marca cada página con su número
func generarPrograma(paginas int, tamPagina int) []byte {
	codigo := make([]byte, paginas*tamPagina)
	for i := range codigo {
		codigo[i] = byte(i / tamPagina)
	}
	return memoria.ConstruirNoff(codigo, nil, 0)
}

// correrPruebaFS usa un proceso propio para tener descriptores de archivo
func correrPruebaFS() error {
	pid, err := ejecutarPrograma(nombrePrograma)
	if err != nil {
		return err
	}
	if err := pruebaFS(pid); err != nil {
		return err
	}
	return finalizarProceso(pid, 0)
}
