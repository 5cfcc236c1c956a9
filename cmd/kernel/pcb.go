package main

import (
	"fmt"
	"time"

	"github.com/pavancse/Unix-Fast-File-System/carga"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

const (
	EstadoReady = "READY"
	EstadoExec  = "EXEC"
	EstadoExit  = "EXIT"
)

// PCB es la vista del driver sobre un proceso de memoria: su traza y hasta
// dónde la reprodujo
type PCB struct {
	PID      int
	Estado   string
	Traza    []carga.Acceso
	Posicion int

	HoraCreacion     time.Time
	HoraFinalizacion time.Time
	TotalEjecuciones int
	Metricas         memoria.MetricasProceso
}

func NuevoPCB(pid int, traza []carga.Acceso) *PCB {
	pcb := &PCB{
		PID:          pid,
		Estado:       EstadoReady,
		Traza:        traza,
		HoraCreacion: time.Now(),
	}
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Se crea el proceso - Estado: %s", pid, pcb.Estado))
	return pcb
}

func (pcb *PCB) CambiarEstado(nuevoEstado string) {
	if pcb.Estado == nuevoEstado {
		return
	}
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Pasa del estado %s al estado %s", pcb.PID, pcb.Estado, nuevoEstado))
	pcb.Estado = nuevoEstado

	switch nuevoEstado {
	case EstadoExec:
		pcb.TotalEjecuciones++
	case EstadoExit:
		pcb.HoraFinalizacion = time.Now()
	}
}

func (pcb *PCB) Terminado() bool {
	return pcb.Posicion >= len(pcb.Traza)
}

// LogMetricas imprime las métricas del proceso al finalizar
func (pcb *PCB) LogMetricas() {
	m := pcb.Metricas
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Finaliza el proceso - Turnos: %d - Duración: %s", pcb.PID,
		pcb.TotalEjecuciones, pcb.HoraFinalizacion.Sub(pcb.HoraCreacion).Round(time.Millisecond)))
	utils.InfoLog.Info(fmt.Sprintf("## (%d) - Métricas - Fallos: %d - Desalojos: %d - Subidas: %d - Bajadas a SWAP: %d - Lecturas: %d - Escrituras: %d",
		pcb.PID, m.FallosPagina, m.Desalojos, m.SubidasMemoria, m.BajadasSwap, m.LecturasMemoria, m.EscriturasMemoria))
}
