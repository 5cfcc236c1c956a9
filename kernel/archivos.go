package kernel

import (
	"fmt"
	"os"

	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

func (k *Kernel) Create(nombre string, tam int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.fs.Create(nombre, tam)
}

// Remove borra el archivo. Los procesos que lo tengan abierto no se enteran;
// el swap de un proceso vivo no se puede borrar.
func (k *Kernel) Remove(nombre string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.swapEnUso(nombre) {
		return fmt.Errorf("%q: %w", nombre, ErrSwapEnUso)
	}
	return k.fs.Remove(nombre)
}

// swapEnUso indica si nombre es el swap de algún proceso de la tabla
func (k *Kernel) swapEnUso(nombre string) bool {
	for _, pcb := range k.procesos {
		if pcb.Espacio != nil && pcb.Espacio.SwapFile() != nil && pcb.Espacio.SwapName() == nombre {
			return true
		}
	}
	return false
}

func (k *Kernel) List() ([]string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.fs.List()
}

func (k *Kernel) EspacioLibre() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.fs.NumClear()
}

func (k *Kernel) ImprimirFS() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.fs.Print()
}

// Open abre nombre para pid y devuelve el descriptor
func (k *Kernel) Open(pid int, nombre string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.open(pid, nombre)
}

func (k *Kernel) open(pid int, nombre string) (int, error) {
	pcb, err := k.proceso(pid)
	if err != nil {
		return -1, err
	}
	if k.swapEnUso(nombre) {
		return -1, fmt.Errorf("%q: %w", nombre, ErrSwapEnUso)
	}
	archivo, err := k.fs.Open(nombre)
	if err != nil {
		return -1, err
	}
	fd := pcb.agregarArchivo(archivo)
	utils.InfoLog.Debug("Archivo abierto", "pid", pid, "nombre", nombre, "fd", fd)
	return fd, nil
}

func (k *Kernel) archivo(pid int, fd int) (*filesys.ExtentFile, error) {
	pcb, err := k.proceso(pid)
	if err != nil {
		return nil, err
	}
	archivo, existe := pcb.archivos[fd]
	if !existe {
		return nil, fmt.Errorf("pid %d fd %d: %w", pid, fd, ErrDescriptorInvalido)
	}
	return archivo, nil
}

// Close guarda el header si cambió y el mapa de libres
func (k *Kernel) Close(pid int, fd int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.close(pid, fd)
}

func (k *Kernel) close(pid int, fd int) error {
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return err
	}
	delete(k.procesos[pid].archivos, fd)
	if err := archivo.Close(); err != nil {
		return err
	}
	return k.fs.Sync()
}

// Read lee desde el cursor del descriptor
func (k *Kernel) Read(pid int, fd int, tam int) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.read(pid, fd, tam)
}

func (k *Kernel) read(pid int, fd int, tam int) ([]byte, error) {
	if fd == ConsolaEntrada {
		if _, err := k.proceso(pid); err != nil {
			return nil, err
		}
		return []byte{}, nil
	}
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, max(tam, 0))
	n, err := archivo.Read(buf, len(buf))
	return buf[:n], err
}

// Write escribe en el cursor del descriptor; ConsolaSalida va a la consola
func (k *Kernel) Write(pid int, fd int, datos []byte) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.write(pid, fd, datos)
}

func (k *Kernel) write(pid int, fd int, datos []byte) (int, error) {
	if fd == ConsolaSalida {
		if _, err := k.proceso(pid); err != nil {
			return 0, err
		}
		return k.consola.Write(datos)
	}
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return 0, err
	}
	return archivo.Write(datos, len(datos))
}

func (k *Kernel) ReadAt(pid int, fd int, tam int, posicion int) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, max(tam, 0))
	n, err := archivo.ReadAt(buf, len(buf), posicion)
	return buf[:n], err
}

func (k *Kernel) WriteAt(pid int, fd int, datos []byte, posicion int) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return 0, err
	}
	return archivo.WriteAt(datos, len(datos), posicion)
}

func (k *Kernel) Length(pid int, fd int) (int, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	archivo, err := k.archivo(pid, fd)
	if err != nil {
		return 0, err
	}
	return archivo.Length(), nil
}

// CopiarDesdeHost copia un archivo del sistema anfitrión al file system
func (k *Kernel) CopiarDesdeHost(rutaHost string, nombre string) error {
	contenido, err := os.ReadFile(rutaHost)
	if err != nil {
		return fmt.Errorf("error leyendo %s: %w", rutaHost, err)
	}
	return k.CopiarBytes(contenido, nombre)
}

// CopiarBytes crea nombre con el contenido dado
func (k *Kernel) CopiarBytes(contenido []byte, nombre string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.fs.Create(nombre, 0); err != nil {
		return err
	}
	archivo, err := k.fs.Open(nombre)
	if err != nil {
		return err
	}
	if _, err := archivo.WriteAt(contenido, len(contenido), 0); err != nil {
		archivo.Close()
		return fmt.Errorf("error copiando a %q: %w", nombre, err)
	}
	if err := archivo.Close(); err != nil {
		return err
	}

	utils.InfoLog.Info("Archivo copiado", "nombre", nombre, "bytes", len(contenido))
	return k.fs.Sync()
}
