// Package driver registers virtual host configurations with the web
// server.
//
// Only Apache httpd is supported. Two on-disk layouts are handled:
//
//   - Debian: configs live in sites-available and are activated by a
//     symlink in sites-enabled, driven by apache2ctl.
//   - RedHat: configs live directly in conf.d; a disabled site is renamed
//     to <name>.conf.disabled. The control binary is apachectl.
//
// # Basic Usage
//
//	p, _ := platform.ParamsFor(platform.Debian)
//	drv := driver.NewApache(p, executor.NewSystemExecutor())
//
//	if err := drv.Add("example.com", configContent); err != nil {
//	    return err
//	}
//	if err := drv.Enable("example.com"); err != nil {
//	    return err
//	}
//	return drv.Reload(ctx) // apache2ctl graceful
//
// # Testing
//
// NewApacheWithExecutor accepts an executor.MockExecutor so configtest and
// graceful can be verified without touching the system. MockDriver is an
// in-memory Driver for code that sits on top of the driver.
package driver
