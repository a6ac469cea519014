package prompts

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/nikolalohinski/gonja"
)

// TemplateFormat is the format of the template.
type TemplateFormat string

const (
	// TemplateFormatGoTemplate is the format for go templates.
	TemplateFormatGoTemplate TemplateFormat = "go-template"
	// TemplateFormatJinja2 is the format for jinja2 templates.
	TemplateFormatJinja2 TemplateFormat = "jinja2"
)

// ErrInvalidTemplateFormat is returned for an unsupported template format.
var ErrInvalidTemplateFormat = errors.New("invalid template format")

type interpolator func(template string, values map[string]any) (string, error)

var defaultFormatterMapping = map[TemplateFormat]interpolator{
	TemplateFormatGoTemplate: interpolateGoTemplate,
	TemplateFormatJinja2:     interpolateJinja2,
}

// interpolateGoTemplate renders the template with text/template, with the
// sprig function set available. Missing variables are an error.
func interpolateGoTemplate(tmpl string, values map[string]any) (string, error) {
	parsedTmpl, err := template.New("template").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}
	sb := new(strings.Builder)
	err = parsedTmpl.Execute(sb, values)
	if err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return sb.String(), nil
}

func interpolateJinja2(tmpl string, values map[string]any) (string, error) {
	tpl, err := gonja.FromString(tmpl)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}
	out, err := tpl.Execute(values)
	if err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return out, nil
}

// RenderTemplate renders the template with the given values.
func RenderTemplate(tmpl string, tmplFormat TemplateFormat, values map[string]any) (string, error) {
	formatter, ok := defaultFormatterMapping[tmplFormat]
	if !ok {
		return "", errors.WithMessagef(ErrInvalidTemplateFormat, "%s", tmplFormat)
	}
	return formatter(tmpl, values)
}

// CheckValidTemplate checks if the template is valid through checking whether
// all the input variables are available in the values.
func CheckValidTemplate(tmpl string, tmplFormat TemplateFormat, inputVariables []string) error {
	_, ok := defaultFormatterMapping[tmplFormat]
	if !ok {
		return errors.WithMessagef(ErrInvalidTemplateFormat, "%s", tmplFormat)
	}

	dummyInputs := make(map[string]any, len(inputVariables))
	for _, v := range inputVariables {
		dummyInputs[v] = "foo"
	}

	_, err := RenderTemplate(tmpl, tmplFormat, dummyInputs)
	return err
}
