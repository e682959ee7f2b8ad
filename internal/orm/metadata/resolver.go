package metadata

import (
	"sort"

	"go.uber.org/zap"
)

// resolveProperties turns every setter with a matching getter into field
// metadata. Relationships and setters without a getter are skipped.
func (f *AccessorFactory) resolveProperties(reg *registries, meta *EntityMetadata, log *zap.Logger) error {
	properties := make([]string, 0, len(reg.setters))
	for property := range reg.setters {
		properties = append(properties, property)
	}
	sort.Strings(properties)

	for _, property := range properties {
		setter := reg.setters[property]
		getter, ok := reg.getters[property]
		if !ok {
			log.Debug("skipping property without getter", zap.String("property", property))
			continue
		}

		if len(setter.Params) == 0 {
			continue
		}
		param := setter.Params[0]
		original := param

		field := FieldMetadata{Getter: getter.Name, Setter: setter.Name}

		if param.Container {
			if adder, ok := reg.adders[property]; ok {
				if last, ok := adder.LastParam(); ok {
					param = last
					field.Adder = adder.Name
				}
			}
		}

		if param.NamesClass() && param.Namespace != "" {
			log.Debug("skipping relationship",
				zap.String("property", property),
				zap.String("target", param.ClassName))
			continue
		}

		switch {
		case param.Container, original.Container:
			field.Type = TypeArray
		default:
			fieldType, err := f.detectPropertyType(reg.owners[property], setter, getter, log)
			if err != nil {
				return err
			}
			field.Type = fieldType
		}

		meta.AddFieldMetadata(f.names.ToSnakeCase(property), field)
	}

	return nil
}
