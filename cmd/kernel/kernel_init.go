package main

import (
	"fmt"
	"time"

	"github.com/pavancse/Unix-Fast-File-System/carga"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// KernelConfig define la configuración del driver de carga
type KernelConfig struct {
	IPMemory               string       `json:"IP_MEMORIA"`
	PortMemory             int          `json:"PUERTO_MEMORIA"`
	LogLevel               string       `json:"LOG_LEVEL"`
	Programa               string       `json:"PROGRAMA,omitempty"` // ejecutable NOFF del host; vacío = se genera
	Procesos               int          `json:"PROCESOS"`
	GradoMultiprogramacion int          `json:"GRADO_MULTIPROGRAMACION"`
	Quantum                int          `json:"QUANTUM"` // accesos por turno
	Carga                  carga.Config `json:"CARGA"`
	PruebaFS               bool         `json:"PRUEBA_FS"`
	Dump                   bool         `json:"DUMP"`
}

var (
	kernelConfig  *KernelConfig
	memoriaClient *utils.HTTPClient
	tamPagina     int
)

func inicializarKernel(configPath string) error {
	kernelConfig = utils.CargarConfiguracion[KernelConfig](configPath)
	completarConfig(kernelConfig)

	utils.InicializarLogger(kernelConfig.LogLevel, "Kernel")
	utils.InfoLog.Info("Inicializando Kernel", "config_path", configPath)

	memoriaClient = utils.NewHTTPClient(kernelConfig.IPMemory, kernelConfig.PortMemory, "Kernel->Memoria")
	if err := conectarAMemoria(10, 3*time.Second); err != nil {
		utils.ErrorLog.Error("No se pudo conectar con Memoria", "error", err)
		return err
	}

	var err error
	if tamPagina, err = handshake(); err != nil {
		return err
	}

	utils.InfoLog.Info("Kernel inicializado correctamente", "tam_pagina", tamPagina)
	return nil
}

func completarConfig(c *KernelConfig) {
	if c.Procesos <= 0 {
		c.Procesos = 1
	}
	if c.GradoMultiprogramacion <= 0 {
		c.GradoMultiprogramacion = 1
	}
	if c.Quantum <= 0 {
		c.Quantum = 10
	}
	if c.Carga.Paginas <= 0 {
		c.Carga.Paginas = 8
	}
}

// conectarAMemoria intenta conectar con el módulo de Memoria con reintentos
func conectarAMemoria(intentosMax int, espera time.Duration) error {
	utils.InfoLog.Info("Conectando con Memoria", "intentos_max", intentosMax)

	for i := 0; i < intentosMax; i++ {
		err := memoriaClient.VerificarConexion()
		if err == nil {
			utils.InfoLog.Info("Conexión establecida con Memoria")
			return nil
		}

		utils.InfoLog.Warn("Fallo al conectar con Memoria, reintentando", "intento", i+1, "error", err)
		time.Sleep(espera)
	}

	return fmt.Errorf("no se pudo establecer conexión después de %d intentos", intentosMax)
}
