// Package config manages the sslvhost manifest: site-wide defaults and the
// SSL virtual hosts declared on this host, stored in YAML format.
//
// The manifest lives at ~/.config/sslvhost/config.yaml unless another path
// is given. A missing file is not an error; it yields the defaults.
//
// # Manifest Structure
//
// The site section holds defaults every vhost inherits:
//   - country and organisation for generated certificate requests
//   - admin address (otherwise webmaster@<name>)
//   - root of the vhost trees (otherwise the OS family default)
//   - the certificate generation script and validity in days
//   - os_family to bypass /etc/os-release detection
//   - state_db for run history and the watch schedule
//
// Example config.yaml:
//
//	site:
//	  country: CH
//	  organisation: Example Organisation
//	  days: 3650
//	vhosts:
//	  ssl.example.com:
//	    aliases: [www.ssl.example.com]
//	    sslonly: true
//	    cacert: https://pki.example.com/ca.crt
//	    publish_csr: true
//
// # Tri-state Fields
//
// docroot, cgibin, certfile, certkey, cacert, certchain, certcn and
// publish_csr accept false (or nothing), true, or a value. false leaves the
// feature off or computed, true selects the default, and a value is used as
// given. See the tristate package.
//
// # Environment
//
// SSLVHOST_COUNTRY, SSLVHOST_ORGANISATION, SSLVHOST_ADMIN,
// SSLVHOST_OS_FAMILY and SSLVHOST_ROOT override the site section. A .env
// file next to the manifest is read first and never overrides variables
// that are already set.
//
// # Thread Safety
//
// Config operations are NOT thread-safe. Callers must implement their own
// synchronization if accessing Config from multiple goroutines.
package config
