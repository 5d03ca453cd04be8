// Package template renders the files sslvhost writes from embedded Go
// templates.
//
// # Templates
//
//	openssl/ssleay.cnf      OpenSSL request config (country, organisation, CN, SANs)
//	apache/vhost.conf       plain HTTP virtual host, one block per port
//	apache/vhost-ssl.conf   SSL virtual host, one block per SSL port
//
// # Rendering
//
//	body, err := template.RenderVHost(template.VHostData{
//	    Name:     "example.com",
//	    SSLPorts: []string{"*:443"},
//	    DocRoot:  "/var/www/example.com/htdocs",
//	    ...
//	}, sslOnly)
//
// With sslOnly the body is the SSL virtual host alone. Otherwise it is the
// plain virtual host followed by the SSL one.
//
// # Custom Functions
//
//   - replace: strings.ReplaceAll
//   - add: integer addition, used to number subjectAltName entries
package template
