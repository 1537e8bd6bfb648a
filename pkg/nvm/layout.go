package nvm

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// layoutLexer tokenizes bitstruct style layouts. Types come before
// identifiers so that "u1u4" splits into two fields.
var layoutLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Type", Pattern: `u[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Comma", Pattern: `,`},
})

// Layout is a parsed layout string.
//
//	u1u1u4
//	RES3:u1 WDT_wen:u1, WDT_ewoff:u4
type Layout struct {
	Fields []*LayoutField `parser:"@@ ( Comma? @@ )*"`
}

// LayoutField is one entry of a layout, optionally named inline.
type LayoutField struct {
	Name string `parser:"( @Ident Colon )?"`
	Type string `parser:"@Type"`
}

var layoutParser = participle.MustBuild[Layout](
	participle.Lexer(layoutLexer),
	participle.Elide("Whitespace"),
)

// ParseLayout builds a Schema from a layout string. Names are either all
// given inline or all supplied in names, one per field.
func ParseLayout(layout string, names ...string) (Schema, error) {
	ast, err := layoutParser.ParseString("", layout)
	if err != nil {
		return nil, fmt.Errorf("nvm: parse layout: %w", err)
	}

	inline := 0
	for _, f := range ast.Fields {
		if f.Name != "" {
			inline++
		}
	}
	switch {
	case inline == len(ast.Fields):
		if len(names) != 0 {
			return nil, fmt.Errorf("nvm: layout names its fields inline, %d extra names given", len(names))
		}
	case inline == 0:
		if len(names) != len(ast.Fields) {
			return nil, fmt.Errorf("nvm: layout has %d fields but %d names given", len(ast.Fields), len(names))
		}
	default:
		return nil, fmt.Errorf("nvm: layout names %d of %d fields inline", inline, len(ast.Fields))
	}

	s := make(Schema, len(ast.Fields))
	for i, f := range ast.Fields {
		width, err := strconv.Atoi(f.Type[1:])
		if err != nil {
			return nil, fmt.Errorf("nvm: field %d: bad width %q", i, f.Type)
		}
		name := f.Name
		if inline == 0 {
			name = names[i]
		}
		s[i] = Field{Name: name, Width: width}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustParseLayout is ParseLayout for package-level schemas.
func MustParseLayout(layout string, names ...string) Schema {
	s, err := ParseLayout(layout, names...)
	if err != nil {
		panic(err)
	}
	return s
}

// String renders the schema in inline-named layout form.
func (s Schema) String() string {
	out := ""
	for i, f := range s {
		if i > 0 {
			out += " "
		}
		out += f.Name + ":u" + strconv.Itoa(f.Width)
	}
	return out
}
