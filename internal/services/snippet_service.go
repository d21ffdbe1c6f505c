package services

import (
	"bytes"
	"encoding/json"
	"html"
	"strconv"
	"strings"
	"text/template"

	"github.com/paydash/backend/internal/config"
	"github.com/paydash/backend/internal/models"
)

type SnippetFormat string

const (
	SnippetHTML  SnippetFormat = "html"
	SnippetReact SnippetFormat = "react"
)

var snippetFuncs = template.FuncMap{
	"attr": html.EscapeString,
	"js": func(s string) string {
		b, _ := json.Marshal(s)
		return string(b)
	},
}

var htmlSnippet = template.Must(template.New("html").Funcs(snippetFuncs).Parse(
	`<div id="paydash-{{attr .ModuleID}}"
     data-paydash-module="{{attr .ModuleID}}"
     data-paydash-kind="{{attr .Kind}}"
{{- range .Attrs}}
     data-{{.HTML}}="{{attr .Value}}"
{{- end}}></div>
<script src="{{attr .ScriptURL}}" data-api-base="{{attr .APIBaseURL}}" async></script>
`))

var reactSnippet = template.Must(template.New("react").Funcs(snippetFuncs).Parse(
	`import { useEffect } from "react";

export default function PaydashModule() {
  useEffect(() => {
    const script = document.createElement("script");
    script.src = {{js .ScriptURL}};
    script.async = true;
    script.dataset.apiBase = {{js .APIBaseURL}};
    document.body.appendChild(script);
    return () => {
      document.body.removeChild(script);
    };
  }, []);

  return (
    <div
      id="paydash-{{attr .ModuleID}}"
      data-paydash-module="{{attr .ModuleID}}"
      data-paydash-kind="{{attr .Kind}}"
{{- range .Attrs}}
      data-{{.HTML}}="{{attr .Value}}"
{{- end}}
    />
  );
}
`))

type snippetAttr struct {
	HTML  string
	Value string
}

type snippetData struct {
	ModuleID   string
	Kind       string
	ScriptURL  string
	APIBaseURL string
	Attrs      []snippetAttr
}

// SnippetService renders embed code for payment modules.
type SnippetService struct {
	widget config.WidgetConfig
}

func NewSnippetService(widget config.WidgetConfig) *SnippetService {
	return &SnippetService{widget: widget}
}

// Generate renders the embed snippet of module in format. The wallet module has none.
func (s *SnippetService) Generate(module *models.PaymentModule, format SnippetFormat) (string, error) {
	var tmpl *template.Template
	switch format {
	case SnippetHTML, "":
		tmpl = htmlSnippet
	case SnippetReact:
		tmpl = reactSnippet
	default:
		return "", validationErrorf("format must be html or react")
	}

	attrs, err := moduleAttrs(module.Config)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, snippetData{
		ModuleID:   module.ID,
		Kind:       string(module.Kind),
		ScriptURL:  s.widget.ScriptURL,
		APIBaseURL: s.widget.APIBaseURL,
		Attrs:      attrs,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func moduleAttrs(cfg models.ModuleConfig) ([]snippetAttr, error) {
	var attrs []snippetAttr
	add := func(name, value string) {
		if value != "" {
			attrs = append(attrs, snippetAttr{HTML: name, Value: value})
		}
	}

	switch c := cfg.(type) {
	case models.PaymentLinkConfig:
		if !c.Amount.IsZero() {
			add("amount", c.Amount.String())
		}
		add("description", c.Description)
		add("redirect-url", c.RedirectURL)
		add("allow-custom-amount", strconv.FormatBool(c.AllowCustomAmount))
	case models.DonationConfig:
		amounts := make([]string, len(c.SuggestedAmounts))
		for i, a := range c.SuggestedAmounts {
			amounts[i] = a.String()
		}
		add("suggested-amounts", strings.Join(amounts, ","))
		if !c.MinAmount.IsZero() {
			add("min-amount", c.MinAmount.String())
		}
		add("message", c.Message)
	case models.CheckoutConfig:
		add("button-label", c.ButtonLabel)
		add("theme", string(c.Theme))
		add("success-url", c.SuccessURL)
		add("cancel-url", c.CancelURL)
	case models.WalletConfig:
		return nil, validationErrorf("the wallet module has no embed snippet")
	default:
		return nil, validationErrorf("module has no configuration")
	}
	return attrs, nil
}
