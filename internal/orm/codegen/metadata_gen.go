package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dave/jennifer/jen"

	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

const (
	metadataPkg = "github.com/conduit-lang/entitymeta/internal/orm/metadata"

	idFuncEntities = "Entities"
	idVarEntities  = "entities"
)

var fieldTypeConsts = map[metadata.FieldType]string{
	metadata.TypeBoolean:  "TypeBoolean",
	metadata.TypeInteger:  "TypeInteger",
	metadata.TypeFloat:    "TypeFloat",
	metadata.TypeString:   "TypeString",
	metadata.TypeDatetime: "TypeDatetime",
	metadata.TypeArray:    "TypeArray",
}

// GenerateMetadataFile renders a Go file declaring
//
//	func Entities() map[string]*metadata.EntityMetadata
//
// which rebuilds the given metadata without reflection. Output is sorted by
// entity and field name.
func GenerateMetadataFile(pkg string, metas []*metadata.EntityMetadata) ([]byte, error) {
	sorted := make([]*metadata.EntityMetadata, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Entity() < sorted[j].Entity()
	})

	for _, meta := range sorted {
		for _, name := range meta.FieldNames() {
			field, _ := meta.Field(name)
			if _, ok := fieldTypeConsts[field.Type]; !ok {
				return nil, fmt.Errorf("%s.%s: unsupported field type %q", meta.Entity(), name, field.Type)
			}
		}
	}

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by entitymeta. DO NOT EDIT.")
	f.ImportName(metadataPkg, "metadata")

	f.Comment(idFuncEntities + " returns the precomputed metadata of every entity, keyed by class name")
	f.Func().Id(idFuncEntities).Params().Map(jen.String()).Op("*").Qual(metadataPkg, "EntityMetadata").BlockFunc(func(g *jen.Group) {
		g.Id(idVarEntities).Op(":=").Make(
			jen.Map(jen.String()).Op("*").Qual(metadataPkg, "EntityMetadata"),
			jen.Lit(len(sorted)),
		)

		for i, meta := range sorted {
			genEntity(g, fmt.Sprintf("m%d", i), meta)
		}

		g.Empty()
		g.Return(jen.Id(idVarEntities))
	})

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering metadata file: %w", err)
	}
	return buf.Bytes(), nil
}

func genEntity(g *jen.Group, varName string, meta *metadata.EntityMetadata) {
	g.Empty()
	g.Id(varName).Op(":=").Qual(metadataPkg, "NewEntityMetadata").Call(jen.Lit(meta.Entity()))

	for _, name := range meta.FieldNames() {
		field, _ := meta.Field(name)

		values := jen.Dict{
			jen.Id("Type"):   jen.Qual(metadataPkg, fieldTypeConsts[field.Type]),
			jen.Id("Getter"): jen.Lit(field.Getter),
			jen.Id("Setter"): jen.Lit(field.Setter),
		}
		if field.Adder != "" {
			values[jen.Id("Adder")] = jen.Lit(field.Adder)
		}

		g.Id(varName).Dot("AddFieldMetadata").Call(
			jen.Lit(name),
			jen.Qual(metadataPkg, "FieldMetadata").Values(values),
		)
	}

	g.Id(idVarEntities).Index(jen.Lit(meta.Entity())).Op("=").Id(varName)
}

// WriteMetadataFile generates the metadata file and writes it to path,
// creating parent directories
func WriteMetadataFile(path, pkg string, metas []*metadata.EntityMetadata) error {
	src, err := GenerateMetadataFile(pkg, metas)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
