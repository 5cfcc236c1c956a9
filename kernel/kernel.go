package kernel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	lock "github.com/viney-shih/go-lock"

	"github.com/pavancse/Unix-Fast-File-System/disco"
	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

var (
	ErrProcesoInexistente = errors.New("proceso inexistente")
	ErrDescriptorInvalido = errors.New("descriptor de archivo inválido")
	ErrSyscallDesconocida = errors.New("llamada al sistema desconocida")
	ErrDetenido           = errors.New("el sistema está detenido")
	ErrSwapEnUso          = errors.New("el archivo es el swap de un proceso vivo")
)

// Kernel es la única puerta de entrada al file system y a la memoria.
// Atiende de a una llamada por vez.
type Kernel struct {
	mu lock.RWMutex

	config  Config
	disco   *disco.SynchDisk
	fs      *filesys.FileSystem
	mem     *memoria.Memoria
	consola io.Writer
	cerrar  func() error

	procesos  map[int]*PCB
	salidas   map[int]int
	actual    int
	ultimoPID int
	detenido  bool
}

// New levanta el file system sobre d (formateando si la config lo pide o si
// el disco está vacío) y la memoria física
func New(cfg Config, d disco.Disco) (*Kernel, error) {
	cfg.completar()
	sd := disco.NewSynchDisk(d, cfg.RetardoDisco)

	var fs *filesys.FileSystem
	var err error
	if cfg.Formatear {
		fs, err = filesys.Format(sd, cfg.Geometria(), cfg.EntradasDirectorio)
	} else {
		fs, err = filesys.Mount(sd, cfg.Geometria(), cfg.EntradasDirectorio)
	}
	if err != nil {
		return nil, fmt.Errorf("error levantando el file system: %w", err)
	}

	k := &Kernel{
		mu:       lock.NewCASMutex(),
		config:   cfg,
		disco:    sd,
		fs:       fs,
		consola:  os.Stdout,
		procesos: make(map[int]*PCB),
		salidas:  make(map[int]int),
		actual:   -1,
	}
	k.mem = memoria.New(cfg.Memoria(), fs, k)

	utils.InfoLog.Info("Kernel inicializado",
		"sectores", cfg.NumSectors,
		"sectores_libres", fs.NumClear(),
		"marcos", cfg.NumFrames)
	return k, nil
}

// Iniciar abre el disco de la configuración; sin DISK_PATH usa uno en memoria
func Iniciar(cfg Config) (*Kernel, error) {
	cfg.completar()
	if cfg.DiskPath == "" {
		return New(cfg, disco.NewMemDisk(cfg.SectorSize, cfg.NumSectors))
	}

	d, err := disco.AbrirFileDisk(cfg.DiskPath, cfg.SectorSize, cfg.NumSectors)
	if err != nil {
		return nil, err
	}
	k, err := New(cfg, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	k.cerrar = d.Close
	return k, nil
}

func (k *Kernel) Config() Config { return k.config }

// SetConsola cambia adonde van las escrituras al descriptor de salida
func (k *Kernel) SetConsola(w io.Writer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.consola = w
}

// SwapFile se llama desde la memoria durante un desalojo, con el kernel ya
// tomado por la llamada en curso
func (k *Kernel) SwapFile(pid int) (filesys.OpenFile, bool) {
	pcb, existe := k.procesos[pid]
	if !existe || pcb.Espacio == nil || pcb.Espacio.SwapFile() == nil {
		return nil, false
	}
	return pcb.Espacio.SwapFile(), true
}

func (k *Kernel) proceso(pid int) (*PCB, error) {
	pcb, existe := k.procesos[pid]
	if !existe {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrProcesoInexistente)
	}
	return pcb, nil
}

func (k *Kernel) generarPID() int {
	k.ultimoPID++
	return k.ultimoPID
}

// Exec crea un proceso nuevo con el ejecutable nombre
func (k *Kernel) Exec(nombre string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.detenido {
		return -1, ErrDetenido
	}
	return k.exec(nombre, -1)
}

func (k *Kernel) exec(nombre string, padre int) (int, error) {
	if k.swapEnUso(nombre) {
		return -1, fmt.Errorf("%q: %w", nombre, ErrSwapEnUso)
	}
	exe, err := k.fs.Open(nombre)
	if err != nil {
		return -1, err
	}
	defer exe.Close()

	pid := k.generarPID()
	espacio, err := k.mem.NewAddrSpace(pid, exe)
	if err != nil {
		return -1, fmt.Errorf("no se pudo cargar %q: %w", nombre, err)
	}

	pcb := NuevoPCB(pid, padre, nombre, espacio)
	k.procesos[pid] = pcb
	pcb.CambiarEstado(EstadoReady)
	if k.actual == -1 {
		k.cambiarA(pcb)
	}
	return pid, nil
}

// reemplazarImagen carga otro ejecutable en el proceso pid. El espacio viejo
// se libera antes de crear el nuevo; si la carga falla el proceso termina.
func (k *Kernel) reemplazarImagen(pid int, nombre string) error {
	pcb, err := k.proceso(pid)
	if err != nil {
		return err
	}
	if k.swapEnUso(nombre) {
		return fmt.Errorf("%q: %w", nombre, ErrSwapEnUso)
	}
	exe, err := k.fs.Open(nombre)
	if err != nil {
		return err
	}
	defer exe.Close()

	// sin marcos ni swap el proceso no puede seguir
	err = pcb.Espacio.Release()
	pcb.Espacio = nil
	if err != nil {
		return errors.Join(err, k.exit(pid, -1))
	}

	espacio, err := k.mem.NewAddrSpace(pid, exe)
	if err != nil {
		k.exit(pid, -1)
		return fmt.Errorf("no se pudo cargar %q: %w", nombre, err)
	}
	pcb.Espacio = espacio
	pcb.NombreArchivo = nombre
	return nil
}

// Fork crea un hijo de pid con una copia de su espacio de direcciones
func (k *Kernel) Fork(pid int) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.fork(pid)
}

func (k *Kernel) fork(pid int) (int, error) {
	padre, err := k.proceso(pid)
	if err != nil {
		return -1, err
	}

	hijoPID := k.generarPID()
	espacio, err := k.mem.CopyAddrSpace(hijoPID, padre.Espacio)
	if err != nil {
		return -1, err
	}

	hijo := NuevoPCB(hijoPID, pid, padre.NombreArchivo, espacio)
	k.procesos[hijoPID] = hijo
	hijo.CambiarEstado(EstadoReady)
	return hijoPID, nil
}

// Exit termina pid: cierra sus archivos y libera marcos y swap
func (k *Kernel) Exit(pid int, codigo int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.exit(pid, codigo)
}

func (k *Kernel) exit(pid int, codigo int) error {
	pcb, err := k.proceso(pid)
	if err != nil {
		return err
	}

	var errs []error
	for fd, archivo := range pcb.archivos {
		if err := archivo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("fd %d: %w", fd, err))
		}
	}
	pcb.archivos = nil

	if pcb.Espacio != nil {
		if err := pcb.Espacio.Release(); err != nil {
			errs = append(errs, err)
		}
	}

	pcb.CambiarEstado(EstadoExit)
	pcb.LogMetricas(k.mem.Metricas(pid))
	k.mem.OlvidarMetricas(pid)

	delete(k.procesos, pid)
	k.salidas[pid] = codigo
	if k.actual == pid {
		k.actual = -1
	}
	if err := k.fs.Sync(); err != nil {
		errs = append(errs, err)
	}

	utils.InfoLog.Info(fmt.Sprintf("(%d) - Finaliza el proceso - Código: %d", pid, codigo))
	return errors.Join(errs...)
}

// Join devuelve el código de salida de pid si ya terminó
func (k *Kernel) Join(pid int) (int, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.join(pid)
}

func (k *Kernel) join(pid int) (int, bool, error) {
	if codigo, terminado := k.salidas[pid]; terminado {
		return codigo, true, nil
	}
	if _, existe := k.procesos[pid]; existe {
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("pid %d: %w", pid, ErrProcesoInexistente)
}

// Switch pone a ejecutar a pid; el que estaba ejecutando vuelve a READY
func (k *Kernel) Switch(pid int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return err
	}
	k.cambiarA(pcb)
	return nil
}

func (k *Kernel) cambiarA(pcb *PCB) {
	if actual, existe := k.procesos[k.actual]; existe && actual != pcb {
		actual.CambiarEstado(EstadoReady)
	}
	pcb.CambiarEstado(EstadoExec)
	k.actual = pcb.PID
}

// siguienteListo elige, en orden de PID, el primer proceso listo después del actual
func (k *Kernel) siguienteListo() *PCB {
	pids := k.pids()
	for _, pid := range pids {
		if pid > k.actual && k.procesos[pid].Estado == EstadoReady {
			return k.procesos[pid]
		}
	}
	for _, pid := range pids {
		if k.procesos[pid].Estado == EstadoReady {
			return k.procesos[pid]
		}
	}
	return nil
}

func (k *Kernel) pids() []int {
	pids := make([]int, 0, len(k.procesos))
	for pid := range k.procesos {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

func (k *Kernel) Actual() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.actual
}

// Procesos devuelve los PIDs vivos, ordenados
func (k *Kernel) Procesos() []int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.pids()
}

func (k *Kernel) Estado(pid int) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return "", err
	}
	return pcb.Estado, nil
}

// PageFault atiende un fallo de página de pid en vaddr
func (k *Kernel) PageFault(pid int, vaddr int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return err
	}
	return pcb.Espacio.LoadPageFault(vaddr)
}

func (k *Kernel) LeerMemoria(pid int, vaddr int, tam int) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return nil, err
	}
	return pcb.Espacio.ReadMem(vaddr, tam)
}

func (k *Kernel) EscribirMemoria(pid int, vaddr int, datos []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return err
	}
	return pcb.Espacio.WriteMem(vaddr, datos)
}

// Dump vuelca la imagen de pid en DUMP_PATH
func (k *Kernel) Dump(pid int) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	pcb, err := k.proceso(pid)
	if err != nil {
		return "", err
	}
	return pcb.Espacio.Dump(k.config.DumpPath)
}

func (k *Kernel) Metricas(pid int) (memoria.MetricasProceso, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if _, err := k.proceso(pid); err != nil {
		return memoria.MetricasProceso{}, err
	}
	return k.mem.Metricas(pid), nil
}

func (k *Kernel) MarcosLibres() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.mem.MarcosLibres()
}

// Halt termina todos los procesos, guarda el mapa de libres y cierra el disco
func (k *Kernel) Halt() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.halt()
}

func (k *Kernel) halt() error {
	if k.detenido {
		return nil
	}
	var errs []error
	for _, pid := range k.pids() {
		if err := k.exit(pid, 0); err != nil {
			errs = append(errs, err)
		}
	}
	if err := k.fs.Sync(); err != nil {
		errs = append(errs, err)
	}
	if k.cerrar != nil {
		if err := k.cerrar(); err != nil {
			errs = append(errs, err)
		}
	}
	k.detenido = true

	utils.InfoLog.Info("Sistema detenido",
		"lecturas_disco", k.disco.Lecturas,
		"escrituras_disco", k.disco.Escrituras)
	return errors.Join(errs...)
}
