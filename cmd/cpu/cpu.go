package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavancse/Unix-Fast-File-System/filesys"
	"github.com/pavancse/Unix-Fast-File-System/memoria"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Proceso es el contexto de ejecución de un script sobre un proceso de memoria
type Proceso struct {
	PID        int
	PC         int
	Ejecutadas int

	// DirArgumentos es donde se dejan las cadenas que reciben las syscalls:
	// el fondo de la pila, justo después de la imagen
	DirArgumentos int

	maxInstrucciones int
	ultimoHijo       int
}

func NuevoProceso(pid int, dirArgumentos int, maxInstrucciones int) *Proceso {
	return &Proceso{
		PID:              pid,
		DirArgumentos:    dirArgumentos,
		maxInstrucciones: maxInstrucciones,
		ultimoHijo:       -1,
	}
}

func leerScript(ruta string) ([]string, error) {
	archivo, err := os.Open(ruta)
	if err != nil {
		return nil, err
	}
	defer archivo.Close()

	var instrucciones []string
	scanner := bufio.NewScanner(archivo)
	for scanner.Scan() {
		if linea := strings.TrimSpace(scanner.Text()); linea != "" && !strings.HasPrefix(linea, "#") {
			instrucciones = append(instrucciones, linea)
		}
	}
	return instrucciones, scanner.Err()
}

// nombreEnDisco recorta el nombre del archivo del host al largo del directorio
func nombreEnDisco(ruta string) string {
	nombre := strings.TrimSuffix(filepath.Base(ruta), filepath.Ext(ruta))
	if len(nombre) > filesys.MaxLargoNombre {
		nombre = nombre[:filesys.MaxLargoNombre]
	}
	return nombre
}

// cargarProceso copia el ejecutable al disco simulado y crea el proceso
func cargarProceso(ruta string) (*Proceso, error) {
	exe, err := os.ReadFile(ruta)
	if err != nil {
		return nil, err
	}
	noff, err := memoria.ParsearNoff(exe)
	if err != nil {
		return nil, err
	}

	nombre := nombreEnDisco(ruta)
	if err := copiarPrograma(nombre, exe); err != nil {
		utils.InfoLog.Warn("No se pudo copiar el programa, se usa el que ya está en disco", "nombre", nombre, "error", err)
	}

	pid, err := ejecutarPrograma(nombre)
	if err != nil {
		return nil, err
	}
	return NuevoProceso(pid, noff.TamImagen(), config.MaxInstrucciones), nil
}

// Ejecutar corre el ciclo fetch-decode-execute hasta que el script termina o
// una instrucción corta la ejecución. Un script que se acaba sin EXIT
// termina el proceso con código 0.
func (p *Proceso) Ejecutar(instrucciones []string) (string, error) {
	for p.PC < len(instrucciones) {
		if p.Ejecutadas >= p.maxInstrucciones {
			return MotivoError, fmt.Errorf("pid %d superó %d instrucciones", p.PID, p.maxInstrucciones)
		}

		instruccion := p.fetch(instrucciones)
		p.PC++
		p.Ejecutadas++

		motivo, err := p.decodeAndExecute(instruccion)
		if err != nil {
			utils.ErrorLog.Error("Error ejecutando instrucción", "pid", p.PID, "pc", p.PC-1, "instruccion", instruccion, "error", err)
			return MotivoError, err
		}
		if motivo != "" {
			return motivo, nil
		}
	}

	return p.decodeAndExecute("EXIT 0")
}

func (p *Proceso) fetch(instrucciones []string) string {
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - FETCH - Program Counter: %d", p.PID, p.PC))
	return instrucciones[p.PC]
}
