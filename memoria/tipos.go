package memoria

import "errors"

var (
	ErrDireccionInvalida = errors.New("dirección virtual fuera del espacio")
	ErrSwapInexistente   = errors.New("no se encontró el swap del proceso")
)

// Config fija la geometría de la memoria física
type Config struct {
	PageSize      int
	NumFrames     int
	UserStackSize int
}

// TranslationEntry es una entrada de la tabla de páginas
type TranslationEntry struct {
	VirtualPage  int
	PhysicalPage int
	Valid        bool
	Use          bool
	Dirty        bool
	ReadOnly     bool
}

// MetricasProceso acumula lo que hizo la paginación de un proceso
type MetricasProceso struct {
	FallosPagina      int `json:"fallos_pagina"`
	Desalojos         int `json:"desalojos"`
	SubidasMemoria    int `json:"subidas_memoria"`
	BajadasSwap       int `json:"bajadas_swap"`
	LecturasMemoria   int `json:"lecturas_memoria"`
	EscriturasMemoria int `json:"escrituras_memoria"`
}
