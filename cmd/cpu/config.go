package main

type CPUConfig struct {
	IPMemory         string `json:"IP_MEMORIA"`
	PortMemory       int    `json:"PUERTO_MEMORIA"`
	MaxInstrucciones int    `json:"MAX_INSTRUCCIONES"` // corta los scripts con GOTO sin salida
	LogLevel         string `json:"LOG_LEVEL"`
}

var config *CPUConfig
