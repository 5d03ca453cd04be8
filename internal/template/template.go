package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// SSLeayData feeds the OpenSSL request configuration template
type SSLeayData struct {
	Country      string
	Organisation string
	CommonName   string
	Aliases      []string // subjectAltName entries besides the CN
}

// VHostData feeds the Apache virtual host templates
type VHostData struct {
	Name            string
	Aliases         []string
	Admin           string
	Ports           []string
	SSLPorts        []string
	DocRoot         string
	CGIBin          string
	ConfDir         string
	LogDir          string
	AccessLogFormat string
	CertFile        string
	KeyFile         string
	CACertFile      string
	ChainFile       string // empty omits SSLCertificateChainFile
}

var funcMap = template.FuncMap{
	"replace": strings.ReplaceAll,
	"add":     func(a, b int) int { return a + b },
}

// Render renders the named embedded template with data
func Render(name string, data interface{}) (string, error) {
	content, err := templates.ReadFile(name + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("template not found: %s", name)
	}

	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// RenderSSLeay renders the OpenSSL configuration passed to the
// certificate generation script
func RenderSSLeay(data SSLeayData) (string, error) {
	return Render(SSLeay, data)
}

// RenderVHost renders the site config body. sslOnly selects the SSL
// template alone; otherwise the plain virtual host precedes the SSL one.
func RenderVHost(data VHostData, sslOnly bool) (string, error) {
	ssl, err := Render(VHostSSL, data)
	if err != nil {
		return "", err
	}
	if sslOnly {
		return ssl, nil
	}

	plain, err := Render(VHost, data)
	if err != nil {
		return "", err
	}
	return plain + ssl, nil
}
