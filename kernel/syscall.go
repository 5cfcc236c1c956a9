package kernel

import (
	"fmt"

	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Números de llamada al sistema
const (
	SyscallHalt   = 0
	SyscallExit   = 1
	SyscallExec   = 2
	SyscallJoin   = 3
	SyscallCreate = 4
	SyscallOpen   = 5
	SyscallRead   = 6
	SyscallWrite  = 7
	SyscallClose  = 8
	SyscallFork   = 9
	SyscallYield  = 10
)

var nombresSyscall = map[int]string{
	SyscallHalt:   "HALT",
	SyscallExit:   "EXIT",
	SyscallExec:   "EXEC",
	SyscallJoin:   "JOIN",
	SyscallCreate: "CREATE",
	SyscallOpen:   "OPEN",
	SyscallRead:   "READ",
	SyscallWrite:  "WRITE",
	SyscallClose:  "CLOSE",
	SyscallFork:   "FORK",
	SyscallYield:  "YIELD",
}

// maxLargoCadena acota la lectura de nombres desde la memoria del usuario
const maxLargoCadena = 256

// Argumentos son los registros r4..r7 al momento de la llamada
type Argumentos [4]int

// HandleSystemCall atiende la llamada numero hecha por pid. Los nombres y los
// buffers se pasan como direcciones virtuales del proceso. Devuelve lo que el
// proceso recibe en r2.
func (k *Kernel) HandleSystemCall(pid int, numero int, args Argumentos) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.detenido {
		return -1, ErrDetenido
	}
	pcb, err := k.proceso(pid)
	if err != nil {
		return -1, err
	}

	nombre, conocida := nombresSyscall[numero]
	if !conocida {
		utils.ErrorLog.Error("Syscall desconocida", "pid", pid, "numero", numero)
		return -1, fmt.Errorf("syscall %d: %w", numero, ErrSyscallDesconocida)
	}
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Solicitó syscall: %s", pid, nombre))

	switch numero {
	case SyscallHalt:
		return 0, k.halt()

	case SyscallExit:
		return 0, k.exit(pid, args[0])

	case SyscallExec:
		archivo, err := leerCadena(pcb.Espacio, args[0])
		if err != nil {
			return -1, err
		}
		if err := k.reemplazarImagen(pid, archivo); err != nil {
			return -1, err
		}
		return 0, nil

	case SyscallJoin:
		codigo, terminado, err := k.join(args[0])
		if err != nil || !terminado || args[0] == pid {
			return -1, err
		}
		return codigo, nil

	case SyscallCreate:
		archivo, err := leerCadena(pcb.Espacio, args[0])
		if err != nil {
			return -1, err
		}
		if err := k.fs.Create(archivo, 0); err != nil {
			return -1, err
		}
		return 0, nil

	case SyscallOpen:
		archivo, err := leerCadena(pcb.Espacio, args[0])
		if err != nil {
			return -1, err
		}
		return k.open(pid, archivo)

	case SyscallRead:
		datos, err := k.read(pid, args[2], args[1])
		if err != nil {
			return -1, err
		}
		if err := pcb.Espacio.WriteMem(args[0], datos); err != nil {
			return -1, err
		}
		return len(datos), nil

	case SyscallWrite:
		datos, err := pcb.Espacio.ReadMem(args[0], args[1])
		if err != nil {
			return -1, err
		}
		return k.write(pid, args[2], datos)

	case SyscallClose:
		return 0, k.close(pid, args[0])

	case SyscallFork:
		return k.fork(pid)

	case SyscallYield:
		if siguiente := k.siguienteListo(); siguiente != nil {
			k.cambiarA(siguiente)
		}
		return 0, nil
	}
	return -1, nil
}

// leerCadena lee un string terminado en cero desde la memoria del proceso
func leerCadena(espacio *memoria.AddrSpace, vaddr int) (string, error) {
	var cadena []byte
	for len(cadena) < maxLargoCadena {
		b, err := espacio.ReadMem(vaddr+len(cadena), 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(cadena), nil
		}
		cadena = append(cadena, b[0])
	}
	return "", fmt.Errorf("cadena en %d sin terminar", vaddr)
}
