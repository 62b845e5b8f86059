// Package dump holds the Index/AnnotationMap snapshot types cmd/stc's
// --emit flag renders to text/json/yaml, grounded on spec §6.4's dump
// requirement and pkg/ident.Compare's stated purpose ("stable sorting
// of symbol names in dumps"). Not part of the compiler's functional
// contract (GLOSSARY: "Dump") — purely an inspection/snapshot-testing
// aid, so it reduces every Type/Annotation down to its String() form
// rather than round-tripping the live graph.
package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/go-stc/stc/internal/annotate"
	"github.com/go-stc/stc/internal/ast"
	"github.com/go-stc/stc/internal/index"
	"github.com/go-stc/stc/pkg/ident"
	"github.com/goccy/go-yaml"
)

// TypeEntry is one named entry in an IndexDump's Types table.
type TypeEntry struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"`
	Builtin bool   `json:"builtin" yaml:"builtin"`
}

// SymbolEntry is one named entry in an IndexDump's Pous/Implementations tables.
type SymbolEntry struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// VariableEntryDump is one named entry in an IndexDump's Globals table.
type VariableEntryDump struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Kind string `json:"kind" yaml:"kind"`
}

// IndexDump is a stable, serializable snapshot of an *index.Index, in
// name-sorted order so two runs over the same source produce byte
// identical text/json/yaml (spec §8's "Dump round-trip" property).
type IndexDump struct {
	Types           []TypeEntry         `json:"types" yaml:"types"`
	Pous            []SymbolEntry       `json:"pous" yaml:"pous"`
	Implementations []SymbolEntry       `json:"implementations" yaml:"implementations"`
	Globals         []VariableEntryDump `json:"globals" yaml:"globals"`
}

// Index builds an IndexDump snapshot of idx.
func Index(idx *index.Index) IndexDump {
	dump := IndexDump{}

	typeNames := idx.Types.Keys()
	sort.Slice(typeNames, func(i, j int) bool { return ident.Compare(typeNames[i], typeNames[j]) < 0 })
	for _, name := range typeNames {
		t, _ := idx.Types.Get(name)
		dump.Types = append(dump.Types, TypeEntry{
			Name:    t.Name(),
			Kind:    t.Nature().String(),
			Builtin: idx.BuiltinLinkage[ident.Normalize(t.Name())],
		})
	}

	pouNames := idx.Pous.Keys()
	sort.Slice(pouNames, func(i, j int) bool { return ident.Compare(pouNames[i], pouNames[j]) < 0 })
	for _, name := range pouNames {
		p, _ := idx.Pous.Get(name)
		dump.Pous = append(dump.Pous, SymbolEntry{Name: p.Name, Kind: p.Kind.String()})
	}

	implNames := idx.Implementations.Keys()
	sort.Slice(implNames, func(i, j int) bool { return ident.Compare(implNames[i], implNames[j]) < 0 })
	for _, name := range implNames {
		impl, _ := idx.Implementations.Get(name)
		dump.Implementations = append(dump.Implementations, SymbolEntry{
			Name: impl.QualifiedName,
			Kind: impl.Pou.Kind.String(),
		})
	}

	globalNames := idx.Globals.Keys()
	sort.Slice(globalNames, func(i, j int) bool { return ident.Compare(globalNames[i], globalNames[j]) < 0 })
	for _, name := range globalNames {
		entry, _ := idx.Globals.Get(name)
		typeName := entry.TypeName
		if entry.Type != nil {
			typeName = entry.Type.String()
		}
		dump.Globals = append(dump.Globals, VariableEntryDump{
			Name: entry.QualifiedName,
			Type: typeName,
			Kind: entry.Block.String(),
		})
	}

	return dump
}

// AnnotationEntry is one node's recorded annotation in an
// AnnotationsDump, keyed by the raw NodeID the parser assigned it
// (spec §9's explicit-IdProvider design means node ids are stable
// across a single run but not across source edits, so a dump is only
// meaningful against the source it was produced from).
type AnnotationEntry struct {
	Node int    `json:"node" yaml:"node"`
	Kind string `json:"kind" yaml:"kind"`
	Type string `json:"type" yaml:"type"`
}

// AnnotationsDump is a stable snapshot of an *annotate.AnnotationMap's
// per-node annotations plus its synthesized-type table, sorted by
// node id.
type AnnotationsDump struct {
	Nodes            []AnnotationEntry `json:"nodes" yaml:"nodes"`
	SynthesizedTypes []string          `json:"synthesized_types" yaml:"synthesized_types"`
	StringLiterals   int               `json:"string_literals" yaml:"string_literals"`
}

// Annotations builds an AnnotationsDump snapshot of anns.
func Annotations(anns *annotate.AnnotationMap) AnnotationsDump {
	dump := AnnotationsDump{StringLiterals: len(anns.StringLiterals)}

	anns.Range(func(node ast.NodeID, ann annotate.Annotation) bool {
		dump.Nodes = append(dump.Nodes, AnnotationEntry{
			Node: int(node),
			Kind: annotate.KindName(ann),
			Type: annotate.ResultType(ann).String(),
		})
		return true
	})
	sort.Slice(dump.Nodes, func(i, j int) bool { return dump.Nodes[i].Node < dump.Nodes[j].Node })

	typeNames := anns.SynthesizedTypes.Keys()
	sort.Slice(typeNames, func(i, j int) bool { return ident.Compare(typeNames[i], typeNames[j]) < 0 })
	dump.SynthesizedTypes = typeNames

	return dump
}

// Write renders v to w in the given format ("json", "yaml", or
// "text" — text falls back to Go's %+v, adequate for a human skimming
// a terminal rather than a tool consuming the output).
func Write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintf(w, "%+v\n", v)
		return err
	}
}
