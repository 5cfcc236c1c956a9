package main

// Estructura de configuración para IO
type IOConfig struct {
	IPMemory    string `json:"IP_MEMORIA"`
	PortMemory  int    `json:"PUERTO_MEMORIA"`
	LogLevel    string `json:"LOG_LEVEL"`
	RetardoBase int    `json:"RETARDO_BASE"`
}

// Variables globales
var (
	config *IOConfig
)
