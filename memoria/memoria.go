package memoria

import (
	"errors"
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/bitmap"
	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// SwapLocator resuelve el archivo de swap de otro proceso cuando hay que
// bajarle una página sucia
type SwapLocator interface {
	SwapFile(pid int) (filesys.OpenFile, bool)
}

// Memoria es la memoria física compartida por todos los espacios de
// direcciones: los marcos, quién los ocupa y en qué orden se cargaron
type Memoria struct {
	config   Config
	ram      []byte
	marcos   *bitmap.BitMap
	ledger   *Ledger
	fs       *filesys.FileSystem
	locator  SwapLocator
	metricas map[int]*MetricasProceso

	proximoSwap int
}

func New(cfg Config, fs *filesys.FileSystem, locator SwapLocator) *Memoria {
	utils.Assert(cfg.PageSize > 0 && cfg.NumFrames > 0,
		"configuración de memoria inválida: %+v", cfg)

	utils.InfoLog.Info("Memoria inicializada",
		"tam_pagina", cfg.PageSize,
		"marcos", cfg.NumFrames,
		"tam_pila", cfg.UserStackSize)

	return &Memoria{
		config:   cfg,
		ram:      make([]byte, cfg.PageSize*cfg.NumFrames),
		marcos:   bitmap.New(cfg.NumFrames, bitmap.GeometriaPlana(cfg.PageSize)),
		ledger:   NewLedger(),
		fs:       fs,
		locator:  locator,
		metricas: make(map[int]*MetricasProceso),
	}
}

func (m *Memoria) Config() Config            { return m.config }
func (m *Memoria) Ledger() *Ledger           { return m.ledger }
func (m *Memoria) MarcosLibres() int         { return m.marcos.NumClear() }
func (m *Memoria) MarcoUsado(marco int) bool { return m.marcos.Test(marco) }

// Marco devuelve el contenido actual de un marco
func (m *Memoria) Marco(marco int) []byte {
	ps := m.config.PageSize
	return m.ram[marco*ps : (marco+1)*ps]
}

func (m *Memoria) metricasDe(pid int) *MetricasProceso {
	if _, existe := m.metricas[pid]; !existe {
		m.metricas[pid] = &MetricasProceso{}
	}
	return m.metricas[pid]
}

// Metricas devuelve una copia de las métricas de pid
func (m *Memoria) Metricas(pid int) MetricasProceso {
	if met, existe := m.metricas[pid]; existe {
		return *met
	}
	return MetricasProceso{}
}

func (m *Memoria) OlvidarMetricas(pid int) {
	delete(m.metricas, pid)
}

// crearSwap crea un archivo de swap de tam bytes con un nombre que no esté usado
func (m *Memoria) crearSwap(tam int) (string, *filesys.ExtentFile, error) {
	for {
		m.proximoSwap++
		nombre := fmt.Sprintf("swap%d", m.proximoSwap)
		err := m.fs.Create(nombre, tam)
		if errors.Is(err, filesys.ErrYaExiste) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("no se pudo crear el swap %s: %w", nombre, err)
		}

		archivo, err := m.fs.Open(nombre)
		if err != nil {
			return "", nil, err
		}
		utils.InfoLog.Debug("Swap creado", "archivo", nombre, "bytes", tam)
		return nombre, archivo, nil
	}
}

// desalojar libera el marco de la página más vieja del ledger. Si estaba
// sucia la baja al swap de su dueño.
func (m *Memoria) desalojar(actual *AddrSpace) (int, error) {
	victima, entrada, ok := m.ledger.MasVieja()
	if !ok {
		return -1, fmt.Errorf("sin marcos ni páginas para desalojar: %w", bitmap.ErrAgotado)
	}

	// la víctima sigue residente hasta que su contenido quedó a salvo
	marco := entrada.PhysicalPage
	if entrada.Dirty {
		if err := m.bajarASwap(actual, victima, marco); err != nil {
			return -1, err
		}
		entrada.Dirty = false
	}

	m.ledger.Quitar(victima.PID, victima.VPN)
	m.marcos.Clear(marco)
	entrada.Valid = false
	entrada.PhysicalPage = -1
	m.metricasDe(victima.PID).Desalojos++

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Página %d desalojada del marco %d", victima.PID, victima.VPN, marco))
	return marco, nil
}

func (m *Memoria) bajarASwap(actual *AddrSpace, victima PaginaResidente, marco int) error {
	var swap filesys.OpenFile
	if victima.PID == actual.pid {
		if actual.swap != nil {
			swap = actual.swap
		}
	} else if m.locator != nil {
		swap, _ = m.locator.SwapFile(victima.PID)
	}
	if swap == nil {
		utils.ErrorLog.Error("Proceso sin swap", "pid", victima.PID)
		return fmt.Errorf("pid %d: %w", victima.PID, ErrSwapInexistente)
	}

	ps := m.config.PageSize
	if _, err := swap.WriteAt(m.Marco(marco), ps, victima.VPN*ps); err != nil {
		return fmt.Errorf("error bajando página %d del pid %d: %w", victima.VPN, victima.PID, err)
	}
	m.metricasDe(victima.PID).BajadasSwap++

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Datos movidos a SWAP - Página: %d", victima.PID, victima.VPN))
	return nil
}
