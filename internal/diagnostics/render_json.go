package diagnostics

import (
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RenderJSON assembles diagnostics into a JSON array field-by-field
// with sjson, matching the pack's funvibe-funxy usage of
// gjson/sjson for structural JSON editing rather than a static
// encoding/json struct (SPEC_FULL §4.6).
func RenderJSON(diags []*Diagnostic) (string, error) {
	doc := "[]"
	var err error
	for i, d := range diags {
		path := func(field string) string { return strconv.Itoa(i) + "." + field }
		if doc, err = sjson.Set(doc, path("code"), d.Code); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, path("severity"), d.Severity.String()); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, path("message"), d.Message); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, path("line"), d.Primary.Start.Line); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, path("column"), d.Primary.Start.Column); err != nil {
			return "", err
		}
		if d.Symbol != "" {
			if doc, err = sjson.Set(doc, path("symbol"), d.Symbol); err != nil {
				return "", err
			}
		}
		if m, ok := d.Detail.(InterfaceMismatch); ok {
			if doc, err = sjson.Set(doc, path("detail.method"), m.Method); err != nil {
				return "", err
			}
			if doc, err = sjson.Set(doc, path("detail.returnType"), m.ReturnType); err != nil {
				return "", err
			}
			if doc, err = sjson.Set(doc, path("detail.parameterName"), m.ParameterName); err != nil {
				return "", err
			}
			if doc, err = sjson.Set(doc, path("detail.parameterType"), m.ParameterType); err != nil {
				return "", err
			}
			if doc, err = sjson.Set(doc, path("detail.declaredType"), m.DeclaredType); err != nil {
				return "", err
			}
		}
		if c, ok := d.Detail.(RecursiveCycle); ok {
			if doc, err = sjson.Set(doc, path("detail.cycle"), c.Path); err != nil {
				return "", err
			}
		}
	}
	return doc, nil
}

// CodeCounts extracts a code -> occurrence-count summary from a
// rendered JSON diagnostics array, used by dump round-trip tests
// (SPEC_FULL §8 "Dump round-trip").
func CodeCounts(renderedJSON string) map[string]int {
	counts := make(map[string]int)
	gjson.Parse(renderedJSON).ForEach(func(_, value gjson.Result) bool {
		counts[value.Get("code").String()]++
		return true
	})
	return counts
}
