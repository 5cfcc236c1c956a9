package memoria

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// Imagen arma el contenido completo del espacio: las páginas cargadas salen
// de su marco y el resto del swap
func (a *AddrSpace) Imagen() ([]byte, error) {
	ps := a.mem.config.PageSize
	imagen := make([]byte, len(a.tabla)*ps)
	for vpn, entrada := range a.tabla {
		destino := imagen[vpn*ps : (vpn+1)*ps]
		if entrada.Valid {
			copy(destino, a.mem.Marco(entrada.PhysicalPage))
			continue
		}
		if _, err := a.swap.ReadAt(destino, ps, vpn*ps); err != nil {
			return nil, fmt.Errorf("error leyendo página %d del swap: %w", vpn, err)
		}
	}
	return imagen, nil
}

// Dump escribe la imagen del proceso en dir/<pid>-<timestamp>.dmp
func (a *AddrSpace) Dump(dir string) (string, error) {
	timestamp := time.Now().Format("20060102-150405")
	ruta := filepath.Join(dir, fmt.Sprintf("%d-%s.dmp", a.pid, timestamp))

	imagen, err := a.Imagen()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		utils.ErrorLog.Error("Error creando directorio dump", "error", err)
		return "", fmt.Errorf("error al crear directorio para dumps: %w", err)
	}
	if err := os.WriteFile(ruta, imagen, 0644); err != nil {
		utils.ErrorLog.Error("Error escribiendo dump", "archivo", ruta, "error", err)
		return "", fmt.Errorf("error al escribir dump: %w", err)
	}

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Memory Dump solicitado", a.pid))
	utils.InfoLog.Debug("Memory dump completado", "pid", a.pid, "archivo", ruta, "bytes", len(imagen))
	return ruta, nil
}
