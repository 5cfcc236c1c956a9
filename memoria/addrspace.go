package memoria

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// AddrSpace es el espacio de direcciones de un proceso. Todas las páginas
// viven en su archivo de swap; las residentes además ocupan un marco.
type AddrSpace struct {
	pid        int
	mem        *Memoria
	tabla      []TranslationEntry
	swap       *filesys.ExtentFile
	nombreSwap string
}

// NewAddrSpace arma el espacio de un ejecutable NOFF: crea el swap y copia
// ahí código y datos inicializados. Ninguna página queda cargada.
func (m *Memoria) NewAddrSpace(pid int, exe filesys.OpenFile) (*AddrSpace, error) {
	buf := make([]byte, TamNoffHeader)
	if _, err := exe.ReadAt(buf, TamNoffHeader, 0); err != nil {
		return nil, fmt.Errorf("error leyendo encabezado: %v: %w", err, ErrEjecutableInvalido)
	}
	noff, err := ParsearNoff(buf)
	if err != nil {
		return nil, err
	}

	ps := m.config.PageSize
	tam := noff.TamImagen() + m.config.UserStackSize
	numPaginas := (tam + ps - 1) / ps

	a, err := m.nuevoEspacio(pid, numPaginas)
	if err != nil {
		return nil, err
	}

	cargado := int(noff.Code.Size) + int(noff.InitData.Size)
	pagina := make([]byte, ps)
	for i := 0; i*ps < cargado; i++ {
		clear(pagina)
		desde := int(noff.Code.InFileAddr) + i*ps
		if n := min(ps, exe.Length()-desde); n > 0 {
			if _, err := exe.ReadAt(pagina, n, desde); err != nil {
				a.Release()
				return nil, fmt.Errorf("error leyendo página %d del ejecutable: %w", i, err)
			}
		}
		if _, err := a.swap.WriteAt(pagina, ps, i*ps); err != nil {
			a.Release()
			return nil, err
		}
	}

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Creado - Tamaño: %d", pid, numPaginas*ps))
	utils.InfoLog.Debug("Espacio inicializado",
		"pid", pid,
		"paginas", numPaginas,
		"codigo", noff.Code.Size,
		"datos", noff.InitData.Size,
		"swap", a.nombreSwap)
	return a, nil
}

// CopyAddrSpace crea para pid una copia del espacio de origen. Antes de copiar
// el swap se bajan las páginas sucias del origen, así la copia ve su contenido
// actual.
func (m *Memoria) CopyAddrSpace(pid int, origen *AddrSpace) (*AddrSpace, error) {
	if err := origen.Flush(); err != nil {
		return nil, err
	}

	a, err := m.nuevoEspacio(pid, len(origen.tabla))
	if err != nil {
		return nil, err
	}

	// la tabla se copia entera y después se invalida: nada de la copia está cargado
	var tabla []TranslationEntry
	if err := copier.CopyWithOption(&tabla, origen.tabla, copier.Option{DeepCopy: true}); err != nil {
		a.Release()
		return nil, fmt.Errorf("error copiando tabla de páginas: %w", err)
	}
	a.tabla = tabla
	for i := range a.tabla {
		a.tabla[i].PhysicalPage = -1
		a.tabla[i].Valid = false
		a.tabla[i].Use = false
		a.tabla[i].Dirty = false
	}

	ps := m.config.PageSize
	pagina := make([]byte, ps)
	for i := range a.tabla {
		if _, err := origen.swap.ReadAt(pagina, ps, i*ps); err != nil {
			a.Release()
			return nil, err
		}
		if _, err := a.swap.WriteAt(pagina, ps, i*ps); err != nil {
			a.Release()
			return nil, err
		}
	}

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Creado - Copia de PID: %d", pid, origen.pid))
	return a, nil
}

func (m *Memoria) nuevoEspacio(pid int, numPaginas int) (*AddrSpace, error) {
	nombre, swap, err := m.crearSwap(numPaginas * m.config.PageSize)
	if err != nil {
		return nil, err
	}

	tabla := make([]TranslationEntry, numPaginas)
	for i := range tabla {
		tabla[i] = TranslationEntry{VirtualPage: i, PhysicalPage: -1}
	}
	m.metricasDe(pid)

	return &AddrSpace{
		pid:        pid,
		mem:        m,
		tabla:      tabla,
		swap:       swap,
		nombreSwap: nombre,
	}, nil
}

func (a *AddrSpace) PID() int                      { return a.pid }
func (a *AddrSpace) NumPages() int                 { return len(a.tabla) }
func (a *AddrSpace) SwapFile() *filesys.ExtentFile { return a.swap }
func (a *AddrSpace) SwapName() string              { return a.nombreSwap }

// Entrada devuelve una copia de la entrada de la página vpn
func (a *AddrSpace) Entrada(vpn int) TranslationEntry {
	return a.tabla[vpn]
}

// StackTop es el valor inicial del puntero de pila
func (a *AddrSpace) StackTop() int {
	return len(a.tabla)*a.mem.config.PageSize - 16
}

// LoadPageFault trae del swap la página que contiene vaddr. Si no hay marco
// libre desaloja la página cargada hace más tiempo, sea de quien sea.
func (a *AddrSpace) LoadPageFault(vaddr int) error {
	m := a.mem
	ps := m.config.PageSize
	vpn := vaddr / ps
	if vaddr < 0 || vpn >= len(a.tabla) {
		return fmt.Errorf("pid %d dirección %d: %w", a.pid, vaddr, ErrDireccionInvalida)
	}

	entrada := &a.tabla[vpn]
	if entrada.Valid {
		utils.InfoLog.Debug("Fallo de página sobre página ya cargada", "pid", a.pid, "pagina", vpn)
		return nil
	}

	pagina := make([]byte, ps)
	if _, err := a.swap.ReadAt(pagina, ps, vpn*ps); err != nil {
		return fmt.Errorf("error leyendo página %d del swap: %w", vpn, err)
	}

	marco, err := m.marcos.Find()
	if err != nil {
		if marco, err = m.desalojar(a); err != nil {
			return err
		}
		m.marcos.Mark(marco)
	}
	copy(m.Marco(marco), pagina)

	entrada.PhysicalPage = marco
	entrada.Valid = true
	entrada.Use = false
	entrada.Dirty = false
	m.ledger.Agregar(a.pid, entrada)

	met := m.metricasDe(a.pid)
	met.FallosPagina++
	met.SubidasMemoria++

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Fallo de página - Página: %d - Marco: %d", a.pid, vpn, marco))
	return nil
}

// Translate pasa de dirección virtual a física, cargando la página si hace falta
func (a *AddrSpace) Translate(vaddr int, escritura bool) (int, error) {
	ps := a.mem.config.PageSize
	vpn := vaddr / ps
	if vaddr < 0 || vpn >= len(a.tabla) {
		return -1, fmt.Errorf("pid %d dirección %d: %w", a.pid, vaddr, ErrDireccionInvalida)
	}

	entrada := &a.tabla[vpn]
	if !entrada.Valid {
		if err := a.LoadPageFault(vaddr); err != nil {
			return -1, err
		}
	}
	if escritura && entrada.ReadOnly {
		return -1, fmt.Errorf("pid %d escritura en página %d de solo lectura: %w", a.pid, vpn, ErrDireccionInvalida)
	}

	entrada.Use = true
	if escritura {
		entrada.Dirty = true
	}
	return entrada.PhysicalPage*ps + vaddr%ps, nil
}

// ReadMem lee size bytes desde vaddr, página por página
func (a *AddrSpace) ReadMem(vaddr int, size int) ([]byte, error) {
	ps := a.mem.config.PageSize
	datos := make([]byte, 0, size)
	for len(datos) < size {
		v := vaddr + len(datos)
		fisica, err := a.Translate(v, false)
		if err != nil {
			return datos, err
		}
		n := min(ps-v%ps, size-len(datos))
		datos = append(datos, a.mem.ram[fisica:fisica+n]...)
	}
	a.mem.metricasDe(a.pid).LecturasMemoria++
	return datos, nil
}

// WriteMem escribe datos a partir de vaddr
func (a *AddrSpace) WriteMem(vaddr int, datos []byte) error {
	ps := a.mem.config.PageSize
	escritos := 0
	for escritos < len(datos) {
		v := vaddr + escritos
		fisica, err := a.Translate(v, true)
		if err != nil {
			return err
		}
		escritos += copy(a.mem.ram[fisica:fisica+min(ps-v%ps, len(datos)-escritos)], datos[escritos:])
	}
	a.mem.metricasDe(a.pid).EscriturasMemoria++
	return nil
}

// Flush baja al swap las páginas residentes sucias sin desalojarlas
func (a *AddrSpace) Flush() error {
	for _, vpn := range a.mem.ledger.PaginasDe(a.pid) {
		entrada := &a.tabla[vpn]
		if !entrada.Dirty {
			continue
		}
		if err := a.mem.bajarASwap(a, PaginaResidente{PID: a.pid, VPN: vpn}, entrada.PhysicalPage); err != nil {
			return err
		}
		entrada.Dirty = false
	}
	return nil
}

// Release libera los marcos del proceso, los deja en cero y borra su swap.
// Las páginas de otros procesos no se tocan.
func (a *AddrSpace) Release() error {
	m := a.mem
	liberados := 0
	for _, entrada := range m.ledger.QuitarProceso(a.pid) {
		clear(m.Marco(entrada.PhysicalPage))
		m.marcos.Clear(entrada.PhysicalPage)
		entrada.PhysicalPage = -1
		entrada.Valid = false
		liberados++
	}

	if a.swap == nil {
		return nil
	}
	if err := a.swap.Close(); err != nil {
		return err
	}
	a.swap = nil
	if err := m.fs.Remove(a.nombreSwap); err != nil {
		return fmt.Errorf("error borrando swap %s: %w", a.nombreSwap, err)
	}

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Marcos liberados: %d", a.pid, liberados))
	return nil
}
