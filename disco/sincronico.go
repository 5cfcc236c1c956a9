package disco

import (
	"github.com/pavancse/Unix-Fast-File-System/utils"
)

// SynchDisk serializa los pedidos al disco: un pedido a la vez, que se
// completa antes de devolver el control. Lleva la cuenta de transferencias.
type SynchDisk struct {
	disco      Disco
	enCurso    *utils.Semaforo
	retardoMs  int
	Lecturas   int
	Escrituras int
}

// NewSynchDisk envuelve un disco crudo aplicando retardoMs por transferencia
func NewSynchDisk(d Disco, retardoMs int) *SynchDisk {
	return &SynchDisk{
		disco:     d,
		enCurso:   utils.NewSemaforo(1),
		retardoMs: retardoMs,
	}
}

func (s *SynchDisk) SectorSize() int { return s.disco.SectorSize() }
func (s *SynchDisk) NumSectors() int { return s.disco.NumSectors() }

func (s *SynchDisk) ReadSector(sector int, buf []byte) error {
	s.enCurso.Wait()
	defer s.enCurso.Signal()

	utils.AplicarRetardo("disco", s.retardoMs)
	s.Lecturas++
	utils.InfoLog.Debug("Lectura de sector", "sector", sector)
	return s.disco.ReadSector(sector, buf)
}

func (s *SynchDisk) WriteSector(sector int, buf []byte) error {
	s.enCurso.Wait()
	defer s.enCurso.Signal()

	utils.AplicarRetardo("disco", s.retardoMs)
	s.Escrituras++
	utils.InfoLog.Debug("Escritura de sector", "sector", sector)
	return s.disco.WriteSector(sector, buf)
}
