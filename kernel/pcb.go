package kernel

import (
	"fmt"
	"time"

	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

const (
	EstadoNew   = "NEW"
	EstadoReady = "READY"
	EstadoExec  = "EXEC"
	EstadoExit  = "EXIT"
)

// los descriptores 0 y 1 son la consola
const (
	ConsolaEntrada = 0
	ConsolaSalida  = 1
)

type PCB struct {
	PID           int
	PadrePID      int
	Estado        string
	NombreArchivo string
	Espacio       *memoria.AddrSpace

	archivos  map[int]*filesys.ExtentFile
	proximoFd int

	// Timestamps
	HoraCreacion     time.Time
	HoraListo        time.Time
	HoraFinalizacion time.Time

	inicioRafaga         time.Time
	TotalEjecuciones     int
	TotalTiempoEjecucion float64
}

func NuevoPCB(pid int, padre int, nombre string, espacio *memoria.AddrSpace) *PCB {
	pcb := &PCB{
		PID:           pid,
		PadrePID:      padre,
		Estado:        EstadoNew,
		NombreArchivo: nombre,
		Espacio:       espacio,
		archivos:      make(map[int]*filesys.ExtentFile),
		proximoFd:     ConsolaSalida + 1,
		HoraCreacion:  time.Now(),
	}

	utils.InfoLog.Info(fmt.Sprintf("(%d) - Se crea el proceso - Estado: %s", pcb.PID, pcb.Estado))
	return pcb
}

func (pcb *PCB) CambiarEstado(nuevoEstado string) {
	if pcb.Estado == nuevoEstado {
		return
	}

	estadoAnterior := pcb.Estado
	horaActual := time.Now()

	if estadoAnterior == EstadoExec && !pcb.inicioRafaga.IsZero() {
		pcb.TotalEjecuciones++
		pcb.TotalTiempoEjecucion += horaActual.Sub(pcb.inicioRafaga).Seconds() * 1000
	}

	switch nuevoEstado {
	case EstadoReady:
		pcb.HoraListo = horaActual
	case EstadoExec:
		pcb.inicioRafaga = horaActual
	case EstadoExit:
		pcb.HoraFinalizacion = horaActual
	}

	pcb.Estado = nuevoEstado
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Pasa del estado %s al estado %s", pcb.PID, estadoAnterior, nuevoEstado))
}

func (pcb *PCB) agregarArchivo(archivo *filesys.ExtentFile) int {
	fd := pcb.proximoFd
	pcb.proximoFd++
	pcb.archivos[fd] = archivo
	return fd
}

func (pcb *PCB) String() string {
	return fmt.Sprintf("PCB{PID: %d, Estado: %s, Programa: %s, Archivos: %d}",
		pcb.PID, pcb.Estado, pcb.NombreArchivo, len(pcb.archivos))
}

// LogMetricas deja en el log el resumen del proceso al terminar
func (pcb *PCB) LogMetricas(met memoria.MetricasProceso) {
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Métricas: EXEC (%d)(%.2f), Fallos de página: %d, Desalojos: %d, Bajadas a SWAP: %d, Lecturas: %d, Escrituras: %d",
		pcb.PID, pcb.TotalEjecuciones, pcb.TotalTiempoEjecucion/1000.0,
		met.FallosPagina, met.Desalojos, met.BajadasSwap, met.LecturasMemoria, met.EscriturasMemoria))
}
