package symbols

import (
	"debug/elf"
	"errors"
	"fmt"

	"github.com/blacktop/go-macho"
)

// Native reads the symbol table of an ELF or Mach-O binary directly, without
// shelling out to nm.
func Native(binary string) (Set, error) {
	if f, err := elf.Open(binary); err == nil {
		defer f.Close()
		return fromELF(f)
	}
	if m, err := macho.Open(binary); err == nil {
		defer m.Close()
		return fromMachO(m), nil
	}
	fat, err := macho.OpenFat(binary)
	if err != nil {
		return nil, fmt.Errorf("%s is neither an ELF nor a Mach-O binary: %w", binary, err)
	}
	defer fat.Close()
	if len(fat.Arches) == 0 {
		return nil, fmt.Errorf("%s: universal binary has no slices", binary)
	}
	// every slice is built from the same sources
	return fromMachO(fat.Arches[0].File), nil
}

func fromMachO(m *macho.File) Set {
	syms := make(Set)
	if m.Symtab == nil {
		return syms
	}
	for _, sym := range m.Symtab.Syms {
		if sym.Type.IsDebugSym() || !sym.Type.IsExternalSym() || sym.Type.IsPrivateExternalSym() {
			continue
		}
		if !sym.Type.IsDefinedInSection() || sym.Sect == 0 || int(sym.Sect) > len(m.Sections) {
			continue
		}
		if sec := m.Sections[sym.Sect-1]; sec.Seg != "__TEXT" || sec.Name != "__text" {
			continue
		}
		syms.Add(Normalize(sym.Name, MachOPrefix))
	}
	return syms
}

func fromELF(f *elf.File) (Set, error) {
	elfSyms, err := f.Symbols()
	if errors.Is(err, elf.ErrNoSymbols) {
		elfSyms, err = f.DynamicSymbols()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ELF symbols: %w", err)
	}
	syms := make(Set)
	for _, sym := range elfSyms {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC || elf.ST_BIND(sym.Info) != elf.STB_GLOBAL {
			continue
		}
		if elf.ST_VISIBILITY(sym.Other) == elf.STV_HIDDEN {
			continue
		}
		if sym.Section == elf.SHN_UNDEF || sym.Section >= elf.SHN_LORESERVE || int(sym.Section) >= len(f.Sections) {
			continue
		}
		if f.Sections[sym.Section].Flags&elf.SHF_EXECINSTR == 0 {
			continue
		}
		syms.Add(Normalize(sym.Name, ""))
	}
	return syms, nil
}
