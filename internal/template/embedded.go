package template

import (
	"embed"
)

//go:embed apache/*.tmpl openssl/*.tmpl
var templates embed.FS

// Template names accepted by Render.
const (
	SSLeay   = "openssl/ssleay.cnf"
	VHost    = "apache/vhost.conf"
	VHostSSL = "apache/vhost-ssl.conf"
)

// Available returns the names of all embedded templates
func Available() []string {
	return []string{SSLeay, VHost, VHostSSL}
}
