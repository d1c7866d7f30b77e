package flow

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderMessage substitutes message properties into a commit or tag message
// template. Templates are text/template bodies; properties are exposed as
// top-level fields, so "{{.version}}" resolves the "version" property.
// A template without markers is returned unchanged.
func RenderMessage(messageTemplate string, props map[string]string) (string, error) {
	if !strings.Contains(messageTemplate, "{{") {
		return messageTemplate, nil
	}

	tmpl, err := template.New("message").Option("missingkey=error").Parse(messageTemplate)
	if err != nil {
		return "", WrapError(err, "failed to parse message template")
	}

	data := make(map[string]string, len(props))
	for k, v := range props {
		data[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", WrapError(err, "failed to render message template")
	}

	return buf.String(), nil
}
