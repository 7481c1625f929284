// Command agencyctl runs maintenance tasks against the agency backend:
// schema migrations, quote listings and catalog lookups.
package main

import (
	"fmt"
	"os"

	"github.com/zatekoja/agencysite/backend/internal/infrastructure/observability"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger("agencyctl", cfg.Env)

	if err := newRootCmd(postgresOpener(cfg)).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
