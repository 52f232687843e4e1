package schema

import "github.com/dm/escat/internal/model"

const (
	defaultFieldType = model.Unknown
	defaultAnalyzer  = "standard"
	nestedType       = "nested"
)

// Flatten walks props depth-first and returns one descriptor per field node,
// parents before their sub-fields, siblings in source order.
func Flatten(props Properties) []model.FieldDescriptor {
	out := make([]model.FieldDescriptor, 0, len(props))
	return flatten(out, props, "")
}

func flatten(out []model.FieldDescriptor, props Properties, prefix string) []model.FieldDescriptor {
	for _, f := range props {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		out = append(out, describe(f, path))
		if len(f.Properties) > 0 {
			out = flatten(out, f.Properties, path)
		}
	}
	return out
}

func describe(f Field, path string) model.FieldDescriptor {
	d := model.FieldDescriptor{
		FieldName:      path,
		FieldType:      f.Type,
		Analyzer:       f.Analyzer,
		Indexed:        f.Index.Or(true),
		Stored:         f.Store.Or(false),
		Nested:         f.Type == nestedType,
		HasMultiFields: f.MultiFields,
	}
	if d.FieldType == "" {
		d.FieldType = defaultFieldType
	}
	if d.Analyzer == "" {
		d.Analyzer = defaultAnalyzer
	}
	return d
}
