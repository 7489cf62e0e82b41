package elf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// TestAddRelocationProducesRelaSection exercises the relocation path end
// to end: a caller records a relocation against a section, and WriteTo
// must serialize it into a sibling .rela<name> section carrying the
// symbol's final symtab index, rather than silently dropping it.
func TestAddRelocationProducesRelaSection(t *testing.T) {
	f := NewFile()
	textSec := f.AddSection(".text", SHT_PROGBITS, SHF_ALLOC|SHF_EXECINSTR, []byte{0xe8, 0, 0, 0, 0})
	mallocSym := f.AddSymbol("malloc", MakeSymbolInfo(STB_GLOBAL, STT_NOTYPE), nil, 0, 0)
	f.AddRelocation(textSec, 1, mallocSym, R_X86_64_PLT32, -4)

	var out bytes.Buffer
	if err := f.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var relaSec *Section
	for _, sec := range f.Sections {
		if sec.Name == ".rela.text" {
			relaSec = sec
		}
	}
	if relaSec == nil {
		t.Fatal("WriteTo did not produce a .rela.text section for a relocated .text")
	}
	if relaSec.Type != SHT_RELA {
		t.Errorf("rela section Type = %d, want SHT_RELA", relaSec.Type)
	}
	if relaSec.Info != uint32(textSec.Index) {
		t.Errorf("rela section Info = %d, want .text's index %d", relaSec.Info, textSec.Index)
	}
	if len(relaSec.Content) != 24 {
		t.Fatalf("rela section content = %d bytes, want one 24-byte Elf64_Rela entry", len(relaSec.Content))
	}

	gotOffset := binary.LittleEndian.Uint64(relaSec.Content[0:8])
	if gotOffset != 1 {
		t.Errorf("r_offset = %d, want 1", gotOffset)
	}
	gotInfo := binary.LittleEndian.Uint64(relaSec.Content[8:16])
	if gotType := uint32(gotInfo); gotType != R_X86_64_PLT32 {
		t.Errorf("r_info type = %d, want R_X86_64_PLT32", gotType)
	}
	if gotSymIdx := uint32(gotInfo >> 32); gotSymIdx != uint32(mallocSym.symIdx) {
		t.Errorf("r_info symidx = %d, want %d", gotSymIdx, mallocSym.symIdx)
	}
	gotAddend := int64(binary.LittleEndian.Uint64(relaSec.Content[16:24]))
	if gotAddend != -4 {
		t.Errorf("r_addend = %d, want -4", gotAddend)
	}
}

func TestSectionsWithNoRelocationsGetNoRelaSection(t *testing.T) {
	f := NewFile()
	f.AddSection(".text", SHT_PROGBITS, SHF_ALLOC|SHF_EXECINSTR, []byte{0x90})

	var out bytes.Buffer
	if err := f.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	for _, sec := range f.Sections {
		if sec.Type == SHT_RELA {
			t.Errorf("unexpected rela section %q for a module with no relocations", sec.Name)
		}
	}
}
