package banner

import (
	"fmt"

	"burrow/pkg/config"
)

const banner = `
██████╗ ██╗   ██╗██████╗ ██████╗  ██████╗ ██╗    ██╗
██╔══██╗██║   ██║██╔══██╗██╔══██╗██╔═══██╗██║    ██║
██████╔╝██║   ██║██████╔╝██████╔╝██║   ██║██║ █╗ ██║
██╔══██╗██║   ██║██╔══██╗██╔══██╗██║   ██║██║███╗██║
██████╔╝╚██████╔╝██║  ██║██║  ██║╚██████╔╝╚███╔███╔╝
╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝  ╚══╝╚══╝
`

// Print writes the startup banner with the effective config summary.
func Print(cfg *config.Config, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("DB Path:  %s\n", cfg.Server.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}

	fmt.Println("\n== Production? ================================================")
	if cfg.Auth.JWTSecret != "" {
		fmt.Println("- JWT secret: configured")
	} else {
		fmt.Println("- JWT secret: MISSING (required)")
	}
	if cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if cfg.Blob.Enabled {
		fmt.Printf("- Uploads: enabled (%s/%s)\n", cfg.Blob.Endpoint, cfg.Blob.Bucket)
	} else {
		fmt.Println("- Uploads: disabled")
	}
	if cfg.Janitor.Enabled {
		fmt.Printf("- Janitor: enabled (cron=%s)\n", cfg.Janitor.Cron)
	} else {
		fmt.Println("- Janitor: disabled (expiry runs lazily on reads)")
	}

	fmt.Println("\n== Logs ======================================================")
}
