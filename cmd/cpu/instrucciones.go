package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pavancse/Unix-Fast-File-System/kernel"
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Motivos por los que un script deja de ejecutar
const (
	MotivoExit  = "EXIT"
	MotivoExec  = "EXEC"
	MotivoHalt  = "HALT"
	MotivoError = "ERROR"
)

// aridad mínima de cada instrucción
var parametrosMinimos = map[string]int{
	"NOOP":        0,
	"WRITE":       2,
	"READ":        2,
	"GOTO":        1,
	"CREATE":      1,
	"OPEN":        1,
	"CLOSE":       1,
	"FWRITE":      3,
	"FREAD":       3,
	"PRINT":       1,
	"FORK":        0,
	"JOIN":        0,
	"YIELD":       0,
	"EXEC":        1,
	"DUMP_MEMORY": 0,
	"EXIT":        0,
	"HALT":        0,
}

func enteros(parametros []string) ([]int, error) {
	valores := make([]int, len(parametros))
	for i, p := range parametros {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parámetro %q no es un número", p)
		}
		valores[i] = v
	}
	return valores, nil
}

// pasarCadena deja texto terminado en cero en la zona de argumentos y
// devuelve su dirección
func (p *Proceso) pasarCadena(texto string) (int, error) {
	if err := escribirEnMemoria(p.PID, p.DirArgumentos, append([]byte(texto), 0)); err != nil {
		return -1, err
	}
	return p.DirArgumentos, nil
}

func (p *Proceso) syscall(numero int, args ...int) (int, error) {
	var registros kernel.Argumentos
	copy(registros[:], args)
	return llamarSistema(p.PID, numero, registros)
}

// syscallConNombre pasa nombre por memoria y hace la llamada con su dirección en r4
func (p *Proceso) syscallConNombre(numero int, nombre string) (int, error) {
	dir, err := p.pasarCadena(nombre)
	if err != nil {
		return -1, err
	}
	return p.syscall(numero, dir)
}

// decodeAndExecute interpreta una instrucción. Devuelve el motivo si la
// ejecución del script tiene que cortarse.
func (p *Proceso) decodeAndExecute(instruccion string) (string, error) {
	partes := strings.Fields(instruccion)
	if len(partes) == 0 {
		return MotivoError, fmt.Errorf("instrucción vacía en pc %d", p.PC)
	}

	operacion := partes[0]
	parametros := partes[1:]

	minimos, conocida := parametrosMinimos[operacion]
	if !conocida {
		return MotivoError, fmt.Errorf("instrucción desconocida: %s", operacion)
	}
	if len(parametros) < minimos {
		return MotivoError, fmt.Errorf("%s: parámetros insuficientes %v", operacion, parametros)
	}

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Ejecutando: %s - %s", p.PID, operacion, strings.Join(parametros, " ")))

	switch operacion {
	case "NOOP":

	case "WRITE":
		dir, err := strconv.Atoi(parametros[0])
		if err != nil {
			return MotivoError, err
		}
		return "", escribirEnMemoria(p.PID, dir, []byte(strings.Join(parametros[1:], " ")))

	case "READ":
		v, err := enteros(parametros[:2])
		if err != nil {
			return MotivoError, err
		}
		_, err = leerDeMemoria(p.PID, v[0], v[1])
		return "", err

	case "GOTO":
		v, err := enteros(parametros[:1])
		if err != nil {
			return MotivoError, err
		}
		p.PC = v[0]

	case "CREATE":
		_, err := p.syscallConNombre(kernel.SyscallCreate, parametros[0])
		return "", err

	case "OPEN":
		fd, err := p.syscallConNombre(kernel.SyscallOpen, parametros[0])
		if err != nil {
			return MotivoError, err
		}
		utils.InfoLog.Info("Archivo abierto", "pid", p.PID, "nombre", parametros[0], "fd", fd)

	case "CLOSE":
		v, err := enteros(parametros[:1])
		if err != nil {
			return MotivoError, err
		}
		_, err = p.syscall(kernel.SyscallClose, v[0])
		return "", err

	// FWRITE/FREAD fd dirección tamaño
	case "FWRITE", "FREAD":
		v, err := enteros(parametros[:3])
		if err != nil {
			return MotivoError, err
		}
		numero := kernel.SyscallWrite
		if operacion == "FREAD" {
			numero = kernel.SyscallRead
		}
		n, err := p.syscall(numero, v[1], v[2], v[0])
		if err != nil {
			return MotivoError, err
		}
		utils.InfoLog.Info("Transferencia con archivo", "pid", p.PID, "operacion", operacion, "fd", v[0], "bytes", n)

	case "PRINT":
		texto := strings.Join(parametros, " ") + "\n"
		dir, err := p.pasarCadena(texto)
		if err != nil {
			return MotivoError, err
		}
		_, err = p.syscall(kernel.SyscallWrite, dir, len(texto), kernel.ConsolaSalida)
		return "", err

	case "FORK":
		hijo, err := p.syscall(kernel.SyscallFork)
		if err != nil {
			return MotivoError, err
		}
		p.ultimoHijo = hijo
		utils.InfoLog.Info(fmt.Sprintf("## (%d) - Fork - Hijo: %d", p.PID, hijo))

	// JOIN sin parámetro espera al último hijo creado
	case "JOIN":
		objetivo := p.ultimoHijo
		if len(parametros) > 0 {
			v, err := enteros(parametros[:1])
			if err != nil {
				return MotivoError, err
			}
			objetivo = v[0]
		}
		codigo, err := p.syscall(kernel.SyscallJoin, objetivo)
		if err != nil {
			return MotivoError, err
		}
		utils.InfoLog.Info("Join", "pid", p.PID, "hijo", objetivo, "codigo", codigo)

	case "YIELD":
		_, err := p.syscall(kernel.SyscallYield)
		return "", err

	// la imagen nueva no corresponde a este script
	case "EXEC":
		if _, err := p.syscallConNombre(kernel.SyscallExec, parametros[0]); err != nil {
			return MotivoError, err
		}
		return MotivoExec, nil

	case "DUMP_MEMORY":
		archivo, err := pedirDump(p.PID)
		if err != nil {
			return MotivoError, err
		}
		utils.InfoLog.Info("Memory dump generado", "pid", p.PID, "archivo", archivo)

	case "EXIT":
		codigo := 0
		if len(parametros) > 0 {
			v, err := enteros(parametros[:1])
			if err != nil {
				return MotivoError, err
			}
			codigo = v[0]
		}
		if _, err := p.syscall(kernel.SyscallExit, codigo); err != nil {
			return MotivoError, err
		}
		return MotivoExit, nil

	case "HALT":
		if _, err := p.syscall(kernel.SyscallHalt); err != nil {
			return MotivoError, err
		}
		return MotivoHalt, nil
	}

	return "", nil
}
