package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

//go:embed templates/*
var templatesFS embed.FS

const (
	TemplateActivation = "activation"

	SubjectActivation = "Activate Your Account"
)

// ActivationVars datos del template de activación.
type ActivationVars struct {
	Name           string
	ActivationCode string
}

// Notifier renderiza templates y los entrega vía Sender.
type Notifier struct {
	sender Sender
	html   *htmltpl.Template
	text   *texttpl.Template
}

func NewNotifier(sender Sender) (*Notifier, error) {
	h, err := htmltpl.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("email: parse html templates: %w", err)
	}
	t, err := texttpl.ParseFS(templatesFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("email: parse text templates: %w", err)
	}
	return &Notifier{sender: sender, html: h, text: t}, nil
}

// Render devuelve (html, text) del template name.
func (n *Notifier) Render(name string, data any) (string, string, error) {
	var hb, tb bytes.Buffer
	if err := n.html.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", fmt.Errorf("email: render %s.html: %w", name, err)
	}
	if err := n.text.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("email: render %s.txt: %w", name, err)
	}
	return hb.String(), tb.String(), nil
}

// SendActivation envía el código de activación a un registro pendiente.
func (n *Notifier) SendActivation(ctx context.Context, to, name, code string) error {
	html, text, err := n.Render(TemplateActivation, ActivationVars{Name: name, ActivationCode: code})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, to, SubjectActivation, html, text)
}
