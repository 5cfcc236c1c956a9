package main

import (
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/carga"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Planificador reparte turnos round robin entre los procesos admitidos. La
// admisión está limitada por el grado de multiprogramación.
type Planificador struct {
	config     *KernelConfig
	programa   string
	semaforo   *utils.Semaforo
	pendientes int
	listos     []*PCB
	terminados []*PCB
	actual     int
}

func NuevoPlanificador(config *KernelConfig, programa string) *Planificador {
	utils.InfoLog.Info("Planificador inicializado",
		"procesos", config.Procesos,
		"multiprogramacion", config.GradoMultiprogramacion,
		"quantum", config.Quantum)

	return &Planificador{
		config:     config,
		programa:   programa,
		semaforo:   utils.NewSemaforo(config.GradoMultiprogramacion),
		pendientes: config.Procesos,
		actual:     -1,
	}
}

// admitir crea procesos mientras haya lugar. Cada uno recibe su propia traza,
// con la semilla corrida por el orden de creación.
func (p *Planificador) admitir() error {
	for p.pendientes > 0 && p.semaforo.TryWait() {
		orden := p.config.Procesos - p.pendientes
		p.pendientes--

		cfg := p.config.Carga
		cfg.Semilla += int64(orden)
		traza, err := carga.Generar(cfg, tamPagina)
		if err != nil {
			return err
		}

		pid, err := ejecutarPrograma(p.programa)
		if err != nil {
			return err
		}
		p.listos = append(p.listos, NuevoPCB(pid, traza))
		utils.InfoLog.Debug("Proceso admitido", "pid", pid, "en_memoria", p.semaforo.Ocupados(),
			"paginas_distintas", carga.PaginasDistintas(traza, tamPagina))
	}
	return nil
}

// ejecutarTurno reproduce hasta un quantum de la traza del proceso
func (p *Planificador) ejecutarTurno(pcb *PCB) error {
	if p.actual != pcb.PID {
		if err := cambiarProceso(pcb.PID); err != nil {
			return fmt.Errorf("error cambiando a pid %d: %w", pcb.PID, err)
		}
		p.actual = pcb.PID
	}
	pcb.CambiarEstado(EstadoExec)

	fin := min(pcb.Posicion+p.config.Quantum, len(pcb.Traza))
	for ; pcb.Posicion < fin; pcb.Posicion++ {
		if err := accederMemoria(pcb.PID, pcb.Traza[pcb.Posicion]); err != nil {
			return fmt.Errorf("pid %d acceso %d: %w", pcb.PID, pcb.Posicion, err)
		}
	}
	return nil
}

func (p *Planificador) finalizar(pcb *PCB) error {
	metricas, err := pedirMetricas(pcb.PID)
	if err != nil {
		return err
	}
	pcb.Metricas = metricas

	if p.config.Dump {
		archivo, err := pedirDump(pcb.PID)
		if err != nil {
			return err
		}
		utils.InfoLog.Info(fmt.Sprintf("## (%d) - Memory Dump: %s", pcb.PID, archivo))
	}

	if err := finalizarProceso(pcb.PID, 0); err != nil {
		return err
	}
	pcb.CambiarEstado(EstadoExit)
	pcb.LogMetricas()

	p.actual = -1
	p.terminados = append(p.terminados, pcb)
	p.semaforo.Signal()
	return nil
}

// Ejecutar corre todos los procesos hasta que terminan sus trazas
func (p *Planificador) Ejecutar() ([]*PCB, error) {
	for {
		if err := p.admitir(); err != nil {
			return p.terminados, err
		}
		if len(p.listos) == 0 {
			return p.terminados, nil
		}

		pcb := p.listos[0]
		p.listos = p.listos[1:]

		if err := p.ejecutarTurno(pcb); err != nil {
			return p.terminados, err
		}

		if pcb.Terminado() {
			if err := p.finalizar(pcb); err != nil {
				return p.terminados, err
			}
			continue
		}
		pcb.CambiarEstado(EstadoReady)
		p.listos = append(p.listos, pcb)
	}
}

// Totales suma las métricas de los procesos terminados
func Totales(pcbs []*PCB) memoria.MetricasProceso {
	var total memoria.MetricasProceso
	for _, pcb := range pcbs {
		total.FallosPagina += pcb.Metricas.FallosPagina
		total.Desalojos += pcb.Metricas.Desalojos
		total.SubidasMemoria += pcb.Metricas.SubidasMemoria
		total.BajadasSwap += pcb.Metricas.BajadasSwap
		total.LecturasMemoria += pcb.Metricas.LecturasMemoria
		total.EscriturasMemoria += pcb.Metricas.EscriturasMemoria
	}
	return total
}
