package bitmap

// Geometria describe cómo se agrupan las unidades de un BitMap:
// un fragmento son UnitsPerFragment unidades contiguas y un bloque son
// FragmentsPerBlock fragmentos contiguos.
type Geometria struct {
	UnitSize          int // bytes por unidad (sector o marco)
	UnitsPerFragment  int
	FragmentsPerBlock int
}

// GeometriaPlana trata cada unidad como su propio fragmento y bloque.
// Es la que usa el asignador de marcos de memoria física.
func GeometriaPlana(unitSize int) Geometria {
	return Geometria{UnitSize: unitSize, UnitsPerFragment: 1, FragmentsPerBlock: 1}
}

func (g Geometria) UnitsPerBlock() int {
	return g.UnitsPerFragment * g.FragmentsPerBlock
}

func (g Geometria) FragmentBytes() int {
	return g.UnitSize * g.UnitsPerFragment
}

func (g Geometria) BlockBytes() int {
	return g.FragmentBytes() * g.FragmentsPerBlock
}

// RedondearAFragmento lleva bytes al siguiente múltiplo del tamaño de fragmento
func (g Geometria) RedondearAFragmento(bytes int) int {
	fb := g.FragmentBytes()
	return (bytes + fb - 1) / fb * fb
}

// UnidadesPara devuelve cuántas unidades asigna FindBytes para bytes:
// siempre fragmentos completos.
func (g Geometria) UnidadesPara(bytes int) int {
	if bytes <= 0 {
		return 0
	}
	return g.RedondearAFragmento(bytes) / g.UnitSize
}

func (g Geometria) valida() bool {
	return g.UnitSize > 0 && g.UnitsPerFragment > 0 && g.FragmentsPerBlock > 0
}
