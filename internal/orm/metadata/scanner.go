package metadata

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/util/strings"
)

var accessorPattern = regexp.MustCompile(`^(Get|Set|Add)[A-Z]`)

// scanMethods registers the accessors of a class. The first class to
// declare a property keeps it: accessors found later on subclasses never
// replace what the root declared.
func (f *AccessorFactory) scanMethods(reg *registries, class *introspect.Class, isSubclass bool, log *zap.Logger) error {
	for _, m := range class.Methods {
		match := accessorPattern.FindStringSubmatch(m.Name)
		if match == nil {
			continue
		}

		property := strings.LowerFirst(m.Name[3:])

		var target map[string]introspect.Method
		switch match[1] {
		case "Get":
			target = reg.getters
		case "Set":
			target = reg.setters
		case "Add":
			target = reg.adders
		}
		if _, exists := target[property]; !exists {
			target[property] = m
		}
		if _, exists := reg.owners[property]; !exists {
			reg.owners[property] = class
		}
	}

	if isSubclass || class.Discriminator == nil {
		return nil
	}
	return f.expandSubclasses(reg, class, log)
}

// expandSubclasses scans every subclass named by the discriminator of a root
// class
func (f *AccessorFactory) expandSubclasses(reg *registries, root *introspect.Class, log *zap.Logger) error {
	d := root.Discriminator
	if len(d.Map) == 0 {
		return newError(root.Name, ErrDiscriminatorMapMissing, "declare at least one type tag")
	}

	namespace := d.SubclassNamespace
	if namespace == "" {
		namespace = root.Namespace
	}

	tags := make([]string, 0, len(d.Map))
	for tag := range d.Map {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		name := d.Map[tag]
		if name == introspect.TypeAsClassName {
			name = tag
		}

		sub, ok := f.resolveSubclass(name, namespace, d.SubclassSuffix)
		if !ok {
			return newError(root.Name, ErrSubclassNotFound, "type %q names %q, not found in %q", tag, name, namespace)
		}

		log.Debug("expanding subclass", zap.String("tag", tag), zap.String("class", sub.Name))
		if err := f.scanMethods(reg, sub, true, log); err != nil {
			return err
		}
	}

	return nil
}

// resolveSubclass tries the name as qualified, then in the namespace, then in
// the namespace with the suffix appended
func (f *AccessorFactory) resolveSubclass(name, namespace, suffix string) (*introspect.Class, bool) {
	pkg, typeName := introspect.SplitQualifiedName(name)
	typeName = f.names.ToStudlyCase(typeName)

	qualified := typeName
	if pkg != "" {
		qualified = pkg + "." + typeName
	}

	candidates := []string{
		qualified,
		namespace + "." + qualified,
		namespace + "." + qualified + suffix,
	}
	for _, candidate := range candidates {
		if class, ok := f.classes.Resolve(candidate); ok {
			return class, true
		}
	}
	return nil, false
}
