package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/CosmoTheDev/flowalert/internal/alert"
	"github.com/CosmoTheDev/flowalert/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify that every configured alerter has the settings it needs",
	Long: `Builds each alerter listed in the config exactly as "flowalert alert"
would, without sending anything, and reports the first missing setting.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== flowalert doctor ===")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Product .................. %s (%s)\n", cfg.Product.Name, orDash(cfg.Product.URL))

	if len(cfg.Alerters) == 0 {
		fmt.Fprintln(out, "Alerters ................. WARN (none configured)")
		return errors.New("no alerters configured")
	}

	allOK := true
	for _, name := range cfg.Alerters {
		single := *cfg
		single.Alerters = []string{name}
		label := fmt.Sprintf("Alerter %s ", name)
		fmt.Fprint(out, label+strings.Repeat(".", max(1, 26-len(label)))+" ")
		if _, err := alert.NewDispatcher(&single); err != nil {
			fmt.Fprintf(out, "FAIL (%s)\n", err)
			allOK = false
			continue
		}
		fmt.Fprintln(out, "OK")
	}

	fmt.Fprintln(out)
	if !allOK {
		return errors.New("some alerters are misconfigured")
	}
	fmt.Fprintln(out, "All checks passed.")
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
