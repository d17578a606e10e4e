// Package notification gestiona plantillas, la cola de emails con reintentos y los
// autorespondedores disparados por cambios de estado.
package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
)

// Render aplica los datos a la plantilla. Las variables ausentes toman su valor por
// defecto; una requerida sin valor, o una referencia no declarada, es domain.ErrInvalidInput.
func Render(t *entity.EmailTemplate, data map[string]string) (*dto.RenderedEmail, error) {
	vars := make(map[string]string, len(t.Variables)+len(data))
	for k, v := range data {
		vars[k] = v
	}
	for _, v := range t.Variables {
		if _, ok := vars[v.Name]; ok {
			continue
		}
		if v.DefaultValue != "" {
			vars[v.Name] = v.DefaultValue
			continue
		}
		if v.Required {
			return nil, fmt.Errorf("%w: falta la variable %q", domain.ErrInvalidInput, v.Name)
		}
		vars[v.Name] = ""
	}
	subject, err := renderText("subject", t.Subject, vars)
	if err != nil {
		return nil, err
	}
	text, err := renderText("text", t.BodyText, vars)
	if err != nil {
		return nil, err
	}
	html, err := renderHTML(t.BodyHTML, vars)
	if err != nil {
		return nil, err
	}
	return &dto.RenderedEmail{Subject: strings.TrimSpace(subject), HTML: html, Text: text}, nil
}

// Validate comprueba la sintaxis de los tres cuerpos.
func Validate(t *entity.EmailTemplate) error {
	if _, err := texttemplate.New("subject").Parse(t.Subject); err != nil {
		return fmt.Errorf("%w: asunto: %v", domain.ErrInvalidInput, err)
	}
	if _, err := texttemplate.New("text").Parse(t.BodyText); err != nil {
		return fmt.Errorf("%w: cuerpo de texto: %v", domain.ErrInvalidInput, err)
	}
	if _, err := htmltemplate.New("html").Parse(t.BodyHTML); err != nil {
		return fmt.Errorf("%w: cuerpo HTML: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func renderText(name, src string, vars map[string]string) (string, error) {
	if src == "" {
		return "", nil
	}
	tpl, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, name, err)
	}
	return buf.String(), nil
}

func renderHTML(src string, vars map[string]string) (string, error) {
	if src == "" {
		return "", nil
	}
	tpl, err := htmltemplate.New("html").Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: html: %v", domain.ErrInvalidInput, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: html: %v", domain.ErrInvalidInput, err)
	}
	return buf.String(), nil
}
