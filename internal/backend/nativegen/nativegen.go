// Package nativegen drives arch/amd64's Compiler over a whole module's
// worth of lowered bodies and links the resulting text buffers into one
// relocatable ELF64 object file via format/elf — the adapted form of
// arc-language-core-codegen's own codegen/codegen.go GenerateObject,
// now producing its input with amd64.CompileBody, whose Compiler emits
// machine code directly as internal/codegen's BlockBuilderMethods are
// called, instead of from core-builder/ir.Module.
package nativegen

import (
	"bytes"
	"fmt"

	"github.com/yrnehli/hashc-sub000/arch/amd64"
	"github.com/yrnehli/hashc-sub000/format/elf"
	"github.com/yrnehli/hashc-sub000/internal/codegen"
	"github.com/yrnehli/hashc-sub000/internal/ir"
	"github.com/yrnehli/hashc-sub000/internal/layout"
)

// Module is the unit nativegen compiles: every function body belonging
// to one compilation unit, already lowered by internal/lower.
type Module struct {
	Name   string
	Bodies []*ir.Body
}

// GenerateObject compiles every body in m to AMD64 machine code and
// links the results into a single relocatable ELF64 object file,
// mirroring the teacher's own section layout (.text, .rela.text,
// symbol table) one to one.
func GenerateObject(lc *layout.Ctx, m Module) ([]byte, error) {
	f := elf.NewFile()
	f.AddSymbol(m.Name, elf.MakeSymbolInfo(elf.STB_LOCAL, elf.STT_FILE), nil, 0, 0)

	var text bytes.Buffer
	var allRelocs []relocAtOffset
	symbolMap := make(map[string]*elf.Symbol)

	artifacts := make([]*amd64.Artifact, len(m.Bodies))
	offsets := make([]uint64, len(m.Bodies))
	for i, body := range m.Bodies {
		fnAbi, err := codegen.ComputeFnAbi(lc, paramTysOf(body), body.ReturnTy())
		if err != nil {
			return nil, fmt.Errorf("nativegen: computing ABI for %q: %w", body.Name, err)
		}
		artifact, err := amd64.CompileBody(lc, body, fnAbi)
		if err != nil {
			return nil, fmt.Errorf("nativegen: %w", err)
		}
		artifacts[i] = artifact
		offsets[i] = uint64(text.Len())
		text.Write(artifact.TextBuffer)
		for _, rel := range artifact.Relocations {
			allRelocs = append(allRelocs, relocAtOffset{offset: offsets[i] + rel.Offset, rel: rel})
		}
	}

	textSec := f.AddSection(".text", elf.SHT_PROGBITS, elf.SHF_ALLOC|elf.SHF_EXECINSTR, text.Bytes())
	textSec.Addralign = 16
	f.AddSymbol("", elf.MakeSymbolInfo(elf.STB_LOCAL, elf.STT_SECTION), textSec, 0, 0)

	for i, artifact := range artifacts {
		for _, sym := range artifact.Symbols {
			info := elf.MakeSymbolInfo(elf.STB_GLOBAL, elf.STT_FUNC)
			elfSym := f.AddSymbol(sym.Name, info, textSec, offsets[i]+sym.Offset, sym.Size)
			symbolMap[sym.Name] = elfSym
		}
	}

	for _, ra := range allRelocs {
		sym, ok := symbolMap[ra.rel.SymbolName]
		if !ok || sym == nil {
			info := elf.MakeSymbolInfo(elf.STB_GLOBAL, elf.STT_NOTYPE)
			sym = f.AddSymbol(ra.rel.SymbolName, info, nil, 0, 0)
			symbolMap[ra.rel.SymbolName] = sym
		}
		f.AddRelocation(textSec, ra.offset, sym, uint32(ra.rel.Type), ra.rel.Addend)
	}

	var out bytes.Buffer
	if err := f.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("nativegen: ELF generation failed: %w", err)
	}
	return out.Bytes(), nil
}

// paramTysOf reads off a body's declared argument types: locals
// 1..NumArgs, in order (local 0 is always the return place).
func paramTysOf(body *ir.Body) []ir.TyId {
	params := make([]ir.TyId, body.NumArgs)
	for i := range params {
		params[i] = body.LocalTy(ir.LocalId(i + 1))
	}
	return params
}

type relocAtOffset struct {
	offset uint64
	rel    amd64.Relocation
}
